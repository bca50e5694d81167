package commands

import (
	"fmt"
	"strings"

	"github.com/fieldlens-labs/fieldlens/internal/cli/config"
	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/fieldlens-labs/fieldlens/internal/dag"
	"github.com/fieldlens-labs/fieldlens/internal/docs"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
	"github.com/spf13/cobra"
)

// GraphOptions holds options for the graph command.
type GraphOptions struct {
	Strategy string
	Format   string
	Levels   bool
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	opts := &GraphOptions{}

	cmd := &cobra.Command{
		Use:   "graph <workbook>",
		Short: "Show the field dependency graph",
		Long: `Display the dependency graph of a workbook's calculated fields.

By default the graph is shown as an edge list. With --levels, fields are
grouped by execution level: level 0 holds fields with no dependencies,
each later level depends only on earlier ones.

Output adapts to environment; --format forces a specific rendering,
including Graphviz DOT for piping into dot(1).`,
		Example: `  # Show the dependency edges
  fieldlens graph superstore

  # Group fields by execution level
  fieldlens graph superstore --levels

  # Render with Graphviz
  fieldlens graph superstore --format dot | dot -Tsvg -o graph.svg

  # Re-derive edges with the containment strategy
  fieldlens graph workbooks/superstore.twb --strategy containment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "Derivation strategy (token-scan|containment)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format (dot|json|markdown|text)")
	cmd.Flags().BoolVar(&opts.Levels, "levels", false, "Group fields by execution level")

	_ = cmd.RegisterFlagCompletionFunc("strategy", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"token-scan", "containment"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"dot", "json", "markdown", "text"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runGraph(cmd *cobra.Command, ref string, opts *GraphOptions) error {
	cfg := getConfig()
	if opts.Strategy != "" {
		override := *cfg
		override.Strategy = opts.Strategy
		cfg = &override
	}
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	cmdCtx := &CommandContext{Cfg: cfg, Logger: logger, Engine: eng, Renderer: r}

	name, a, err := loadAnalysis(cmdCtx, ref)
	if err != nil {
		return err
	}
	graph := eng.Graph(a)

	format := opts.Format
	if format == "" {
		switch r.EffectiveMode() {
		case output.ModeJSON:
			format = "json"
		case output.ModeMarkdown:
			format = "markdown"
		default:
			format = "text"
		}
	}

	switch format {
	case "dot":
		_, err := fmt.Fprint(r.Writer(), docs.DOT(name, graph))
		return err
	case "json":
		return graphJSON(r, name, a.Strategy, graph)
	case "markdown":
		return graphMarkdown(r, name, graph, opts.Levels)
	case "text":
		return graphText(r, name, graph, opts.Levels)
	default:
		return fmt.Errorf("unknown graph format %q", format)
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, name string, graph *dag.Graph, byLevel bool) error {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("Dependency graph for %s", name))

	if byLevel {
		levels, err := graph.Levels()
		if err != nil {
			return fmt.Errorf("failed to compute execution levels: %w", err)
		}
		for i, level := range levels {
			r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
			for _, caption := range level {
				r.Printf("  %s\n", styles.FieldCaption.Render(caption))
				if deps := graph.Parents(caption); len(deps) > 0 {
					r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
				}
				if used := graph.Children(caption); len(used) > 0 {
					r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(used, ", "))
				}
			}
			r.Println("")
		}
	} else {
		for _, node := range graph.Nodes() {
			for _, child := range graph.Children(node.Caption) {
				r.Printf("  %s %s %s\n", node.Caption, styles.Muted.Render("->"), child)
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d fields, %d edges", graph.NodeCount(), graph.EdgeCount())))
	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, name string, graph *dag.Graph, byLevel bool) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Dependency graph for %s", name)))
	r.Println("")

	if byLevel {
		levels, err := graph.Levels()
		if err != nil {
			return fmt.Errorf("failed to compute execution levels: %w", err)
		}
		for i, level := range levels {
			levelName := fmt.Sprintf("Level %d", i)
			if i == 0 {
				levelName = "Level 0 (Sources)"
			}
			r.Println(output.FormatHeader(2, levelName))
			for _, caption := range level {
				r.Printf("- %s\n", caption)
				if deps := graph.Parents(caption); len(deps) > 0 {
					r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
				}
				if used := graph.Children(caption); len(used) > 0 {
					r.Printf("  - used by: %s\n", strings.Join(used, ", "))
				}
			}
			r.Println("")
		}
	} else {
		for _, node := range graph.Nodes() {
			for _, child := range graph.Children(node.Caption) {
				r.Printf("- %s -> %s\n", node.Caption, child)
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Fields", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", graph.EdgeCount())))
	return nil
}

// graphJSON outputs the graph in JSON format, always level grouped.
func graphJSON(r *output.Renderer, name string, strategy catalog.Strategy, graph *dag.Graph) error {
	levels, err := graph.Levels()
	if err != nil {
		return fmt.Errorf("failed to compute execution levels: %w", err)
	}

	doc := output.GraphOutput{
		Workbook:    name,
		Strategy:    string(strategy),
		Levels:      make([]output.GraphLevel, 0, len(levels)),
		TotalFields: graph.NodeCount(),
		TotalEdges:  graph.EdgeCount(),
	}

	for i, level := range levels {
		gl := output.GraphLevel{
			Level:  i,
			Fields: make([]output.GraphNode, 0, len(level)),
		}
		for _, caption := range level {
			gl.Fields = append(gl.Fields, output.GraphNode{
				Caption:   caption,
				DependsOn: graph.Parents(caption),
				UsedBy:    graph.Children(caption),
			})
		}
		doc.Levels = append(doc.Levels, gl)
	}

	return r.JSON(doc)
}
