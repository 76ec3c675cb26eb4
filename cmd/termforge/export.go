package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/termforge/internal/export"
)

func (c *cli) exportCmd() *cobra.Command {
	var out, pdfOut, font string
	cmd := &cobra.Command{
		Use:   "export <keywordID>",
		Short: "Render a keyword's articles and quizzes as Markdown, and optionally PDF",
		Long: `Render stored contents for a keyword.

Examples:
  termforge export 12                       # Markdown to stdout
  termforge export 12 --out idempotency.md
  termforge export 12 --pdf idempotency.pdf --font NotoSansKR-Regular.ttf`,
		Args: cobra.ExactArgs(1),
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

			b, err := export.Load(cmd.Context(), st, id)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			md := export.Markdown(b)
			if pdfOut != "" {
				if err := export.WritePDF(md, pdfOut, export.PDFOptions{FontPath: font}); err != nil {
					return fmt.Errorf("write pdf: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", boldGreen("wrote"), pdfOut)
			}
			if out != "" {
				if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write markdown: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", boldGreen("wrote"), out)
				return nil
			}
			if pdfOut == "" {
				fmt.Fprint(cmd.OutOrStdout(), md)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write Markdown to this file instead of stdout")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "Also render a PDF to this path")
	cmd.Flags().StringVar(&font, "font", "", "TTF font for the PDF; needed for non-Latin text")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", boldGreen("migrated"), redactDSN(c.cfg.DatabaseDSN))
			return nil
		},
	}
}
