package commands

import (
	"fmt"
	"strings"

	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/fieldlens-labs/fieldlens/internal/dag"
	"github.com/fieldlens-labs/fieldlens/internal/export"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// FieldsOptions holds options for the fields command.
type FieldsOptions struct {
	CalcsOnly     bool
	Datasource    string
	IncludeHidden bool
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	opts := &FieldsOptions{}

	cmd := &cobra.Command{
		Use:   "fields <workbook>",
		Short: "Show the field catalog of a workbook",
		Long: `Display every field of a workbook in canonical order: parameters first,
then calculated fields, then plain fields, alphabetical within each group.

The workbook argument is either a path to a .twb/.twbx file or the name of
a workbook already analyzed into the catalog store.

Output adapts to environment:
  - Terminal: go-pretty table
  - Piped/Scripted: Markdown table (agent-friendly)`,
		Example: `  # Show all fields of a workbook file
  fieldlens fields workbooks/superstore.twb

  # Show a stored workbook by name
  fieldlens fields superstore

  # Only calculated fields and parameters, with formulas
  fieldlens fields superstore --calcs-only

  # Restrict to one datasource
  fieldlens fields superstore --datasource "Sample - Superstore"

  # Export-grade CSV on stdout
  fieldlens fields superstore --output csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.CalcsOnly, "calcs-only", false, "Show only calculated fields and parameters")
	cmd.Flags().StringVar(&opts.Datasource, "datasource", "", "Show only fields of the named datasource")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "hidden", false, "Include hidden fields")

	return cmd
}

func runFields(cmd *cobra.Command, ref string, opts *FieldsOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer

	name, a, err := loadAnalysis(cmdCtx, ref)
	if err != nil {
		return err
	}

	fields := filterFields(a.Fields, opts)
	graph := cmdCtx.Engine.Graph(a)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return fieldsJSON(r, name, a, fields, graph)
	case output.ModeCSV:
		return export.WriteFieldsCSV(r.Writer(), fields)
	case output.ModeMarkdown:
		return fieldsMarkdown(r, name, fields, opts)
	default:
		return fieldsTable(r, name, fields, opts)
	}
}

// filterFields applies the command's flags. Hidden fields stay out unless
// asked for; the datasource filter matches caption or name, case folded.
func filterFields(fields []*catalog.Field, opts *FieldsOptions) []*catalog.Field {
	out := make([]*catalog.Field, 0, len(fields))
	for _, f := range fields {
		if f.Hidden && !opts.IncludeHidden {
			continue
		}
		if opts.CalcsOnly && !f.IsCalc() {
			continue
		}
		if opts.Datasource != "" &&
			!strings.EqualFold(f.DatasourceCaption, opts.Datasource) &&
			!strings.EqualFold(f.DatasourceName, opts.Datasource) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// fieldsTable outputs the catalog as a styled table.
func fieldsTable(r *output.Renderer, name string, fields []*catalog.Field, opts *FieldsOptions) error {
	r.Header(1, fmt.Sprintf("Fields in %s", name))

	if len(fields) == 0 {
		r.Println("(no fields)")
		return nil
	}

	t := newTable(r.Writer())
	if opts.CalcsOnly {
		t.AppendHeader(table.Row{"Caption", "Category", "Formula", "Datasource"})
		for _, f := range fields {
			t.AppendRow(table.Row{f.Caption, string(f.Category), truncateCell(f.Formula, 60), f.DatasourceCaption})
		}
	} else {
		t.AppendHeader(table.Row{"Caption", "Category", "Role", "Type", "Datasource"})
		for _, f := range fields {
			t.AppendRow(table.Row{f.Caption, string(f.Category), f.Role, f.DataType, f.DatasourceCaption})
		}
	}
	t.Render()

	r.Printf("(%d fields)\n", len(fields))
	return nil
}

// fieldsMarkdown outputs the catalog as a markdown pipe table.
func fieldsMarkdown(r *output.Renderer, name string, fields []*catalog.Field, opts *FieldsOptions) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Fields in %s", name)))
	r.Println("")

	if len(fields) == 0 {
		r.Println("(no fields)")
		return nil
	}

	if opts.CalcsOnly {
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Caption, string(f.Category), f.Formula, f.DatasourceCaption})
		}
		renderMarkdownTable(r.Writer(), []string{"Caption", "Category", "Formula", "Datasource"}, rows)
	} else {
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Caption, string(f.Category), f.Role, f.DataType, f.DatasourceCaption})
		}
		renderMarkdownTable(r.Writer(), []string{"Caption", "Category", "Role", "Type", "Datasource"}, rows)
	}

	r.Println("")
	r.Printf("%d fields\n", len(fields))
	return nil
}

// fieldsJSON outputs the catalog in JSON format.
func fieldsJSON(r *output.Renderer, name string, a *catalog.Analysis, fields []*catalog.Field, graph *dag.Graph) error {
	doc := output.FieldsOutput{
		Workbook: name,
		Strategy: string(a.Strategy),
		Fields:   make([]output.FieldInfo, 0, len(fields)),
	}

	datasources := make(map[string]bool)
	for _, f := range fields {
		doc.Fields = append(doc.Fields, output.FieldInfo{
			ID:                 f.ID,
			Caption:            f.Caption,
			Alias:              f.Alias,
			Datasource:         f.DatasourceCaption,
			Role:               f.Role,
			DataType:           f.DataType,
			DefaultAggregation: f.DefaultAggregation,
			Hidden:             f.Hidden,
			Description:        f.Description,
			Formula:            f.Formula,
			Category:           string(f.Category),
			Dependencies:       graph.Parents(f.Caption),
			Dependents:         graph.Children(f.Caption),
		})

		datasources[f.DatasourceName] = true
		switch f.Category {
		case catalog.CategoryCalculated:
			doc.Summary.Calculated++
		case catalog.CategoryParameter:
			doc.Summary.Parameters++
		}
		if f.Hidden {
			doc.Summary.Hidden++
		}
	}
	doc.Summary.Total = len(fields)
	doc.Summary.Datasources = len(datasources)

	return r.JSON(doc)
}

// truncateCell shortens long cell text for table display.
func truncateCell(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
