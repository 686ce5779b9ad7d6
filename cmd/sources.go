package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// newSourcesCmd creates the 'sources' subcommand.
func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Lists the configured sources by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			priority := make(map[string]bool)
			for _, src := range appInstance.PrioritySources() {
				priority[src.Name] = true
			}

			var rows [][]string
			registry := appInstance.GetSources()
			for _, category := range registry.Categories() {
				for _, src := range registry.ByCategory(category) {
					mark := ""
					if priority[src.Name] {
						mark = "yes"
					}
					rows = append(rows, []string{category, src.Name, string(src.Type), mark, src.URL})
				}
			}
			return renderTable(cmd.OutOrStdout(), []string{"CATEGORY", "NAME", "TYPE", "PRIORITY", "URL"}, rows)
		},
	}
}

// renderTable writes rows as borderless, left-aligned columns.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader:     tw.Off,
					BetweenRows:    tw.Off,
					BetweenColumns: tw.Off,
				},
				Lines: tw.Lines{ShowHeaderLine: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
