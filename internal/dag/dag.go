// Package dag provides directed-graph operations over field dependencies.
// It supports cycle detection, topological ordering and transitive
// lineage queries, all keyed by field caption.
package dag

import (
	"fmt"
	"sort"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// Node is one field in the dependency graph.
type Node struct {
	// Caption is the unique node key.
	Caption string
	// Field is the backing record, nil for nodes added without one.
	Field *catalog.Field
}

// Graph is a directed graph of field dependencies. Parallel edges are
// collapsed; an analysis' edge multiplicity lives in the analysis, not
// here.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // dependent -> dependencies
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// FromAnalysis builds the dependency graph of an analysis: one node per
// field, one edge per distinct relationship. Self references (possible
// when two records share a caption) are dropped.
func FromAnalysis(a *catalog.Analysis) *Graph {
	g := NewGraph()
	for _, f := range a.Fields {
		g.AddNode(f.Caption, f)
	}
	for _, e := range a.Relationships {
		if e.From == e.To {
			continue
		}
		// Endpoints exist whenever the analysis was closed; tolerate
		// hand-built inputs anyway.
		g.AddNode(e.From, nil)
		g.AddNode(e.To, nil)
		_ = g.AddEdge(e.From, e.To)
	}
	return g
}

// AddNode adds a node. Re-adding an existing caption only updates the
// backing field, and never clears it back to nil.
func (g *Graph) AddNode(caption string, field *catalog.Field) {
	if n, exists := g.nodes[caption]; exists {
		if field != nil {
			n.Field = field
		}
		return
	}
	g.nodes[caption] = &Node{Caption: caption, Field: field}
	g.edges[caption] = []string{}
	g.parents[caption] = []string{}
}

// AddEdge records that "to" depends on "from". Both nodes must exist;
// self loops are rejected; duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("unknown field %q", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("unknown field %q", to)
	}
	if from == to {
		return fmt.Errorf("self reference on %q", from)
	}

	if !containsString(g.edges[from], to) {
		g.edges[from] = append(g.edges[from], to)
	}
	if !containsString(g.parents[to], from) {
		g.parents[to] = append(g.parents[to], from)
	}
	return nil
}

// Node returns the node for a caption.
func (g *Graph) Node(caption string) (*Node, bool) {
	n, exists := g.nodes[caption]
	return n, exists
}

// Parents returns the direct dependencies of a field.
func (g *Graph) Parents(caption string) []string {
	return g.parents[caption]
}

// Children returns the direct dependents of a field.
func (g *Graph) Children(caption string) []string {
	return g.edges[caption]
}

// Nodes returns all nodes sorted by caption.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Caption < nodes[j].Caption
	})
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle reports whether the graph contains a dependency cycle, along
// with one offending path. Workbooks with circular calculations exist in
// the wild; traversals report them instead of recursing forever.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(caption string) bool
	dfs = func(caption string) bool {
		visited[caption] = true
		recStack[caption] = true

		for _, child := range g.edges[caption] {
			if !visited[child] {
				path[child] = caption
				if dfs(child) {
					return true
				}
			} else if recStack[child] {
				cyclePath = []string{child}
				for curr := caption; curr != child; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{child}, cyclePath...)
				return true
			}
		}

		recStack[caption] = false
		return false
	}

	// Iterate in sorted order so the reported path is stable.
	for _, caption := range g.sortedCaptions() {
		if !visited[caption] {
			if dfs(caption) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// TopologicalSort returns nodes in dependency order (dependencies before
// dependents). Returns an error when the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("dependency cycle: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(caption string)
	visit = func(caption string) {
		if visited[caption] {
			return
		}
		visited[caption] = true

		for _, parent := range g.parents[caption] {
			visit(parent)
		}

		result = append(result, g.nodes[caption])
	}

	for _, caption := range g.sortedCaptions() {
		visit(caption)
	}

	return result, nil
}

// Levels groups fields into evaluation tiers: fields at level N depend
// only on fields in levels below N, and level 0 holds fields with no
// dependencies. Returns an error when the graph contains a cycle.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("dependency cycle: %v", cyclePath)
	}
	if len(g.nodes) == 0 {
		return nil, nil
	}

	assigned := make(map[string]int)

	var level func(caption string) int
	level = func(caption string) int {
		if l, ok := assigned[caption]; ok {
			return l
		}

		parents := g.parents[caption]
		if len(parents) == 0 {
			assigned[caption] = 0
			return 0
		}

		max := 0
		for _, parent := range parents {
			if pl := level(parent); pl > max {
				max = pl
			}
		}

		assigned[caption] = max + 1
		return max + 1
	}

	maxLevel := 0
	for caption := range g.nodes {
		if l := level(caption); l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for caption, l := range assigned {
		levels[l] = append(levels[l], caption)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}

	return levels, nil
}

// Upstream returns every field the given field transitively depends on,
// sorted, the field itself excluded.
func (g *Graph) Upstream(caption string) []string {
	seen := make(map[string]bool)

	var mark func(caption string)
	mark = func(caption string) {
		for _, parent := range g.parents[caption] {
			if !seen[parent] {
				seen[parent] = true
				mark(parent)
			}
		}
	}
	mark(caption)

	return sortedKeys(seen)
}

// Downstream returns every field that transitively depends on the given
// field, sorted, the field itself excluded.
func (g *Graph) Downstream(caption string) []string {
	seen := make(map[string]bool)

	var mark func(caption string)
	mark = func(caption string) {
		for _, child := range g.edges[caption] {
			if !seen[child] {
				seen[child] = true
				mark(child)
			}
		}
	}
	mark(caption)

	return sortedKeys(seen)
}

// Roots returns fields nothing depends on, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for caption := range g.nodes {
		if len(g.parents[caption]) == 0 {
			roots = append(roots, caption)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns fields with no dependents, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for caption := range g.nodes {
		if len(g.edges[caption]) == 0 {
			leaves = append(leaves, caption)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph restricted to the given captions and the
// edges between them.
func (g *Graph) Subgraph(captions []string) *Graph {
	sub := NewGraph()
	included := make(map[string]bool)

	for _, caption := range captions {
		if n, exists := g.nodes[caption]; exists {
			included[caption] = true
			sub.AddNode(caption, n.Field)
		}
	}

	for caption := range included {
		for _, child := range g.edges[caption] {
			if included[child] {
				_ = sub.AddEdge(caption, child)
			}
		}
	}

	return sub
}

func (g *Graph) sortedCaptions() []string {
	captions := make([]string, 0, len(g.nodes))
	for caption := range g.nodes {
		captions = append(captions, caption)
	}
	sort.Strings(captions)
	return captions
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
