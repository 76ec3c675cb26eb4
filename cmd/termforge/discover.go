package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/termforge/internal/search"
)

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search query and print deduplicated results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			query := strings.Join(args, " ")
			results, err := a.Search.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			results = search.Dedupe(results)
			if c.jsonOut {
				if results == nil {
					results = []search.Result{}
				}
				return writeJSON(cmd.OutOrStdout(), results)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d results from %s for %q\n\n", len(results), a.Search.Name(), query)
			for i, r := range results {
				fmt.Fprintf(w, "%3d. %s\n     %s\n", i+1, boldCyan(truncate(r.Title, titleMaxLen)), faint(r.URL))
			}
			return nil
		},
	}
}

func (c *cli) crawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl <url>",
		Short: "Fetch one page under robots.txt rules and print its text blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			doc, err := a.CrawlURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), doc)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n%s\n\n", boldCyan(doc.Title), faint(doc.URL))
			for _, t := range doc.Texts {
				fmt.Fprintf(w, "%s\n\n", t)
			}
			return nil
		},
	}
}

func (c *cli) rankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <query>",
		Short: "Search, crawl and rank documents for a query without generating",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			ranked, err := a.Rank(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.jsonOut {
				type row struct {
					Title string  `json:"title"`
					Score float64 `json:"score"`
					Bytes int     `json:"bytes"`
				}
				rows := make([]row, 0, len(ranked))
				for _, r := range ranked {
					rows = append(rows, row{Title: r.Document.Title, Score: r.Score, Bytes: len(r.Document.Content)})
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			w := cmd.OutOrStdout()
			if len(ranked) == 0 {
				fmt.Fprintln(w, yellow("no documents matched"))
				return nil
			}
			for i, r := range ranked {
				fmt.Fprintf(w, "%3d. %s  %s\n", i+1, boldGreen(fmt.Sprintf("%7.3f", r.Score)), truncate(r.Document.Title, titleMaxLen))
			}
			return nil
		},
	}
}
