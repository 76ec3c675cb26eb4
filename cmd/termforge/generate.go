package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/termforge/internal/queue"
)

func (c *cli) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <keywordID>",
		Short: "Generate articles and quizzes for a keyword in the foreground",
		Long: `Run the full pipeline for one keyword: search, crawl, rank, then write
five articles with summaries and quizzes in one transaction each.

A keyword that already has articles but no quizzes only gets quizzes.
A keyword that has both exits with code 3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeywordID(args[0])
			if err != nil {
				return err
			}
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			a.Preflight(cmd.Context())

			if err := a.Generate(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s keyword %d\n", boldGreen("generated"), id)
			return nil
		},
	}
}

func (c *cli) workerCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process queued keyword jobs until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			a.Preflight(ctx)

			w := a.Worker()
			log.Info().Str("worker", w.Token()).Dur("poll", c.cfg.PollInterval).Msg("worker started")
			if once {
				ran, err := w.RunOnce(ctx)
				if err != nil {
					return err
				}
				if !ran {
					fmt.Fprintln(cmd.OutOrStdout(), faint("queue empty"))
				}
				return nil
			}
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info().Msg("worker stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Process at most one job and exit")
	return cmd
}

func (c *cli) enqueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <keywordID>",
		Short: "Queue a keyword for a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseKeywordID(args[0])
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			if _, err := st.Keyword(cmd.Context(), id); err != nil {
				return err
			}
			q := &queue.Queue{Store: st}
			jobID, err := q.Enqueue(cmd.Context(), id)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]int64{"job": jobID, "keyword": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s job %d for keyword %d\n", boldGreen("queued"), jobID, id)
			return nil
		},
	}
}
