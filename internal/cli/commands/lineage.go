package commands

import (
	"fmt"
	"sort"

	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/fieldlens-labs/fieldlens/internal/dag"
	"github.com/spf13/cobra"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	Direction string
	Depth     int
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage <workbook> <field>",
		Short: "Show lineage for a field",
		Long: `Display the upstream dependencies and downstream dependents of a field.

The lineage shows how values flow through calculated fields, helping you
understand the impact of changing a formula or removing a column.`,
		Example: `  # Full lineage of a field
  fieldlens lineage superstore "Profit Ratio"

  # Only what the field depends on
  fieldlens lineage superstore "Profit Ratio" --direction up

  # Only what would break if the field changed
  fieldlens lineage superstore Profit --direction down

  # Limit traversal depth
  fieldlens lineage superstore "Profit Ratio" --depth 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Direction, "direction", "both", "Traversal direction (up|down|both)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Max traversal depth (0 = unlimited)")

	_ = cmd.RegisterFlagCompletionFunc("direction", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"up", "down", "both"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runLineage(cmd *cobra.Command, ref, field string, opts *LineageOptions) error {
	switch opts.Direction {
	case "up", "down", "both":
	default:
		return fmt.Errorf("unknown direction %q (want up, down, or both)", opts.Direction)
	}

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
	graph := cmdCtx.Engine.Graph(a)

	if _, exists := graph.Node(field); !exists {
		return fmt.Errorf("field not found in %s: %s", name, field)
	}

	var upstream, downstream []string
	if opts.Direction != "down" {
		upstream = upstreamWithDepth(graph, field, opts.Depth)
	}
	if opts.Direction != "up" {
		downstream = downstreamWithDepth(graph, field, opts.Depth)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.LineageOutput{
			Workbook:   name,
			Field:      field,
			Direction:  opts.Direction,
			Upstream:   upstream,
			Downstream: downstream,
		})
	case output.ModeMarkdown:
		return lineageMarkdown(r, field, opts.Direction, upstream, downstream)
	default:
		return lineageText(r, field, opts.Direction, upstream, downstream)
	}
}

// lineageText outputs lineage in styled text format.
func lineageText(r *output.Renderer, field, direction string, upstream, downstream []string) error {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("Lineage for %s", field))

	if direction != "down" {
		r.Println(styles.Header2.Render(fmt.Sprintf("Upstream dependencies (%d):", len(upstream))))
		for _, caption := range upstream {
			r.Printf("  - %s\n", caption)
		}
		r.Println("")
	}

	if direction != "up" {
		r.Println(styles.Header2.Render(fmt.Sprintf("Downstream dependents (%d):", len(downstream))))
		for _, caption := range downstream {
			r.Printf("  - %s\n", caption)
		}
	}

	return nil
}

// lineageMarkdown outputs lineage in markdown format.
func lineageMarkdown(r *output.Renderer, field, direction string, upstream, downstream []string) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Lineage for %s", field)))
	r.Println("")

	if direction != "down" {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Upstream dependencies (%d)", len(upstream))))
		for _, caption := range upstream {
			r.Printf("- %s\n", caption)
		}
		r.Println("")
	}

	if direction != "up" {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Downstream dependents (%d)", len(downstream))))
		for _, caption := range downstream {
			r.Printf("- %s\n", caption)
		}
	}

	return nil
}

// upstreamWithDepth returns transitive dependencies with an optional
// depth limit, sorted.
func upstreamWithDepth(graph *dag.Graph, caption string, maxDepth int) []string {
	if maxDepth == 0 {
		return graph.Upstream(caption)
	}
	return traverseWithDepth(caption, maxDepth, graph.Parents)
}

// downstreamWithDepth returns transitive dependents with an optional
// depth limit, sorted.
func downstreamWithDepth(graph *dag.Graph, caption string, maxDepth int) []string {
	if maxDepth == 0 {
		return graph.Downstream(caption)
	}
	return traverseWithDepth(caption, maxDepth, graph.Children)
}

func traverseWithDepth(start string, maxDepth int, next func(string) []string) []string {
	visited := map[string]bool{start: true}
	var result []string

	frontier := []string{start}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var nextFrontier []string
		for _, caption := range frontier {
			for _, n := range next(caption) {
				if visited[n] {
					continue
				}
				visited[n] = true
				result = append(result, n)
				nextFrontier = append(nextFrontier, n)
			}
		}
		frontier = nextFrontier
	}

	sort.Strings(result)
	return result
}
