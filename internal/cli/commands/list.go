package commands

import (
	"fmt"
	"time"

	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/fieldlens-labs/fieldlens/internal/state"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workbooks in the catalog store",
		Long: `List every workbook in the catalog store with field, calculation, and
edge counts.

The catalog is read as-is; run 'fieldlens discover' to refresh it.

Output adapts to environment:
  - Terminal: go-pretty table
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # List stored workbooks
  fieldlens list

  # List as JSON
  fieldlens list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer

	records, err := cmdCtx.Engine.Store().ListWorkbooks()
	if err != nil {
		return fmt.Errorf("failed to list workbooks: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(r, records, cmdCtx.Cfg.StatePath)
	case output.ModeMarkdown:
		return listMarkdown(r, records)
	default:
		return listText(r, records)
	}
}

// listText outputs workbooks as a styled table.
func listText(r *output.Renderer, records []*state.WorkbookRecord) error {
	r.Header(1, fmt.Sprintf("Workbooks (%d total)", len(records)))

	if len(records) == 0 {
		r.Println("The catalog store is empty.")
		r.Muted("Run 'fieldlens discover' to analyze workbooks.")
		return nil
	}

	t := newTable(r.Writer())
	t.AppendHeader(table.Row{"Name", "Fields", "Calcs", "Edges", "Strategy", "Analyzed"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.Name,
			rec.FieldCount,
			rec.CalcCount,
			rec.EdgeCount,
			string(rec.Strategy),
			rec.AnalyzedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t.Render()

	return nil
}

// listMarkdown outputs workbooks in markdown format.
func listMarkdown(r *output.Renderer, records []*state.WorkbookRecord) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Workbooks (%d total)", len(records))))
	r.Println("")

	if len(records) == 0 {
		r.Println("The catalog store is empty. Run 'fieldlens discover' to analyze workbooks.")
		return nil
	}

	for _, rec := range records {
		r.Println(output.FormatHeader(2, rec.Name))
		r.Println(output.FormatKeyValue("Path", rec.Path))
		if rec.Version != "" {
			r.Println(output.FormatKeyValue("Version", rec.Version))
		}
		r.Println(output.FormatKeyValue("Fields", fmt.Sprintf("%d", rec.FieldCount)))
		r.Println(output.FormatKeyValue("Calculations", fmt.Sprintf("%d", rec.CalcCount)))
		r.Println(output.FormatKeyValue("Edges", fmt.Sprintf("%d", rec.EdgeCount)))
		r.Println(output.FormatKeyValue("Strategy", string(rec.Strategy)))
		r.Println(output.FormatKeyValue("Analyzed", rec.AnalyzedAt.Format(time.RFC3339)))
		r.Println("")
	}

	return nil
}

// listJSON outputs workbooks in JSON format.
func listJSON(r *output.Renderer, records []*state.WorkbookRecord, statePath string) error {
	doc := output.ListOutput{
		Workbooks: make([]output.WorkbookInfo, 0, len(records)),
		StatePath: statePath,
	}

	for _, rec := range records {
		doc.Workbooks = append(doc.Workbooks, output.WorkbookInfo{
			Name:       rec.Name,
			Path:       rec.Path,
			Version:    rec.Version,
			Strategy:   string(rec.Strategy),
			FieldCount: rec.FieldCount,
			CalcCount:  rec.CalcCount,
			EdgeCount:  rec.EdgeCount,
			AnalyzedAt: rec.AnalyzedAt.Format(time.RFC3339),
		})
	}

	return r.JSON(doc)
}
