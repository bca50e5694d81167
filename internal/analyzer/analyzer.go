// Package analyzer assembles the complete analysis of one workbook
// document tree: collection, identity resolution, formula rewriting,
// edge derivation and closure, in pipeline order.
//
// Analyze is a pure function of its input; it owns no state and may be
// called concurrently for distinct documents.
package analyzer

import (
	"github.com/fieldlens-labs/fieldlens/internal/fields"
	"github.com/fieldlens-labs/fieldlens/internal/lineage"
	"github.com/fieldlens-labs/fieldlens/internal/workbook"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// Options configures one analysis run.
type Options struct {
	// Strategy selects the edge derivation; zero or unknown values mean
	// token scanning.
	Strategy catalog.Strategy
}

// Analyze turns a document tree into the canonical field list, the
// calculation sublist and the dependency edges.
func Analyze(root *workbook.Element, opts Options) *catalog.Analysis {
	strategy := opts.Strategy
	if !strategy.Valid() {
		strategy = catalog.StrategyTokenScan
	}

	collected := fields.Collect(root)
	names := fields.DisplayNames(collected)

	kept := fields.Dedupe(collected)
	fields.Sort(kept)
	fields.RewriteAll(kept, names)

	edges := lineage.Derive(kept, strategy)
	all := lineage.Close(kept, edges)

	var calcs []*catalog.Field
	for _, f := range all {
		if f.IsCalc() {
			calcs = append(calcs, f)
		}
	}

	return &catalog.Analysis{
		Fields:        all,
		Calcs:         calcs,
		Relationships: edges,
		Strategy:      strategy,
	}
}
