package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/termforge/internal/store"
)

func (c *cli) keywordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyword",
		Short: "Manage keywords",
	}
	cmd.AddCommand(c.keywordAddCmd(), c.keywordListCmd())
	return cmd
}

func (c *cli) keywordAddCmd() *cobra.Command {
	var name, description, published string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a keyword",
		Long: `Add a keyword to generate contents for.

Examples:
  termforge keyword add --name "Idempotency" --description "Repeating a request has the same effect." --published 2026-11-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" {
				return configErrorf("--name is required")
			}
			k := store.Keyword{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
			if published != "" {
				d, err := time.Parse(store.DateLayout, published)
				if err != nil {
					return configErrorf("--published must be YYYY-MM-DD: %w", err)
				}
				k.PublishedDate = &d
			}
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			id, err := st.AddKeyword(cmd.Context(), k)
			if err != nil {
				return err
			}
			k.ID = id
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), k)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s keyword %d\n", boldGreen("added"), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Keyword name")
	cmd.Flags().StringVar(&description, "description", "", "Short description; its first sentence joins the search query")
	cmd.Flags().StringVar(&published, "published", "", "Publish date for generated articles (YYYY-MM-DD)")
	return cmd
}

func (c *cli) keywordListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			keywords, err := st.ListKeywords(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				if keywords == nil {
					keywords = []store.Keyword{}
				}
				return writeJSON(cmd.OutOrStdout(), keywords)
			}
			if len(keywords) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No keywords")
				return nil
			}
			for _, k := range keywords {
				printKeyword(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
