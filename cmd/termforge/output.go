package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/termforge/internal/app"
	"github.com/hyperifyio/termforge/internal/store"
)

const titleMaxLen = 70

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func parseKeywordID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, configErrorf("invalid keyword id %q", arg)
	}
	return id, nil
}

// newApp builds the full pipeline. Validation failures map to the config
// exit code.
func (c *cli) newApp(ctx context.Context) (*app.App, error) {
	if err := app.ValidateConfig(c.cfg); err != nil {
		return nil, &configError{err: err}
	}
	return app.New(ctx, c.cfg)
}

// openStore opens the database for commands that never touch search or
// the LLM.
func (c *cli) openStore(cmd *cobra.Command) (*store.Store, error) {
	if strings.TrimSpace(c.cfg.DatabaseDSN) == "" {
		return nil, configErrorf("database DSN is required")
	}
	return app.OpenStore(cmd.Context(), c.cfg)
}

func printKeyword(w io.Writer, k store.Keyword) {
	date := faint("unscheduled")
	if k.PublishedDate != nil {
		date = k.PublishedDate.Format(store.DateLayout)
	}
	fmt.Fprintf(w, "  %s  %-10s  %s\n", boldCyan(fmt.Sprintf("%6d", k.ID)), date, truncate(k.Name, titleMaxLen))
}
