package docs

import (
	"fmt"
	"strings"

	"github.com/fieldlens-labs/fieldlens/internal/dag"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// DOT renders a dependency graph in Graphviz format. Output is
// deterministic: nodes and edges appear in caption order.
func DOT(name string, g *dag.Graph) string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\" fontsize=11];\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  %q [shape=%s];\n", n.Caption, nodeShape(n.Field))
	}
	for _, n := range g.Nodes() {
		for _, child := range g.Children(n.Caption) {
			fmt.Fprintf(&b, "  %q -> %q;\n", n.Caption, child)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// nodeShape maps a field's category to its graph shape. Nodes without a
// backing field are references that never resolved to a record.
func nodeShape(f *catalog.Field) string {
	if f == nil {
		return "plaintext"
	}
	switch f.Category {
	case catalog.CategoryParameter:
		return "diamond"
	case catalog.CategoryCalculated:
		return "ellipse"
	default:
		return "box"
	}
}
