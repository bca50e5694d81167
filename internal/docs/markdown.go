package docs

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Markdown renders a workbook document as a standalone markdown page.
// Fields are grouped by datasource in catalog order, with a calculations
// section listing formulas and dependency links.
func Markdown(doc *WorkbookDoc) string {
	caser := cases.Title(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Name)
	b.WriteString(summaryLine(doc))
	b.WriteString("\n\n")

	if len(doc.Fields) == 0 {
		b.WriteString("No fields.\n")
		return b.String()
	}

	// Group fields by datasource, keeping catalog order
	var order []string
	grouped := make(map[string][]*FieldDoc)
	for _, f := range doc.Fields {
		caption := f.DatasourceCaption
		if caption == "" {
			caption = f.DatasourceName
		}
		if _, seen := grouped[caption]; !seen {
			order = append(order, caption)
		}
		grouped[caption] = append(grouped[caption], f)
	}

	for _, ds := range order {
		fmt.Fprintf(&b, "## %s\n\n", ds)
		b.WriteString("| Field | Role | Type | Category | Description |\n")
		b.WriteString("|-------|------|------|----------|-------------|\n")
		for _, f := range grouped[ds] {
			caption := escapeCell(f.Caption)
			if f.Hidden {
				caption += " (hidden)"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				caption,
				caser.String(f.Role),
				caser.String(f.DataType),
				caser.String(f.Category),
				escapeCell(f.Description))
		}
		b.WriteString("\n")
	}

	var calcs []*FieldDoc
	for _, f := range doc.Fields {
		if f.Category == "calculated" && f.Formula != "" {
			calcs = append(calcs, f)
		}
	}
	if len(calcs) > 0 {
		b.WriteString("## Calculations\n\n")
		for _, f := range calcs {
			fmt.Fprintf(&b, "### %s\n\n", f.Caption)
			fmt.Fprintf(&b, "```\n%s\n```\n\n", f.Formula)
			if f.RawFormula != "" && f.RawFormula != f.Formula {
				fmt.Fprintf(&b, "As authored: `%s`\n\n", f.RawFormula)
			}
			if len(f.Dependencies) > 0 {
				fmt.Fprintf(&b, "Depends on: %s.\n", strings.Join(f.Dependencies, ", "))
			}
			if len(f.Dependents) > 0 {
				fmt.Fprintf(&b, "Used by: %s.\n", strings.Join(f.Dependents, ", "))
			}
			if len(f.Dependencies) > 0 || len(f.Dependents) > 0 {
				b.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func summaryLine(doc *WorkbookDoc) string {
	calcs, params := 0, 0
	datasources := make(map[string]bool)
	for _, f := range doc.Fields {
		switch f.Category {
		case "calculated":
			calcs++
		case "parameter":
			params++
		}
		datasources[f.DatasourceCaption] = true
	}

	var parts []string
	if doc.Version != "" {
		parts = append(parts, fmt.Sprintf("Version %s.", doc.Version))
	}
	counts := plural(len(doc.Fields), "field")
	switch {
	case calcs > 0 && params > 0:
		counts += fmt.Sprintf(" (%d calculated, %s)", calcs, plural(params, "parameter"))
	case calcs > 0:
		counts += fmt.Sprintf(" (%d calculated)", calcs)
	case params > 0:
		counts += fmt.Sprintf(" (%s)", plural(params, "parameter"))
	}
	counts += fmt.Sprintf(" across %s.", plural(len(datasources), "datasource"))
	parts = append(parts, counts)
	if doc.Strategy != "" {
		parts = append(parts, fmt.Sprintf("Dependencies derived with the %s strategy.", doc.Strategy))
	}

	return strings.Join(parts, " ")
}

// escapeCell escapes pipe characters so captions cannot break table rows.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
