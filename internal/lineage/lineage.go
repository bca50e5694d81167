// Package lineage derives the directed dependency edges between fields
// and closes the field list over edge endpoints.
//
// Two strategies exist. Token scanning reads the rewritten formulas and
// is the canonical one; containment probes raw identifiers against the
// original formula text and is kept for comparability with catalogs
// produced before rewriting existed. The two disagree whenever a field's
// caption differs from its identifier, so their outputs are never mixed.
package lineage

import (
	"github.com/fieldlens-labs/fieldlens/internal/fields"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// Derive returns the dependency edges for the given records. Edges carry
// multiplicity: a formula referencing the same field twice yields two
// edges. Unknown strategies fall back to token scanning.
func Derive(records []*catalog.Field, strategy catalog.Strategy) []catalog.Edge {
	if strategy == catalog.StrategyContainment {
		return containment(records)
	}
	return tokenScan(records)
}

// tokenScan walks each record's rewritten formula and emits one edge per
// bracketed token. A token naming the record itself is discarded.
func tokenScan(records []*catalog.Field) []catalog.Edge {
	var edges []catalog.Edge
	for _, f := range records {
		if f.Formula == "" {
			continue
		}
		own := catalog.Fold(f.Caption)
		for _, token := range fields.Tokens(f.Formula) {
			if catalog.Fold(token) == own {
				continue
			}
			edges = append(edges, catalog.Edge{From: token, To: f.Caption})
		}
	}
	return edges
}

// containment probes every record's bracketed identifier against every
// other record's original formula text. Quadratic in the number of
// records; reads RawFormula so the result is independent of rewriting.
func containment(records []*catalog.Field) []catalog.Edge {
	var edges []catalog.Edge
	for _, src := range records {
		needle := catalog.Fold(catalog.Bracket(src.StrippedID()))
		if needle == "[]" {
			continue
		}
		for _, target := range records {
			if target == src || target.RawFormula == "" {
				continue
			}
			if !containsFold(target.RawFormula, needle) {
				continue
			}
			edges = append(edges, catalog.Edge{From: src.Caption, To: target.Caption})
		}
	}
	return edges
}

func containsFold(haystack, foldedNeedle string) bool {
	folded := catalog.Fold(haystack)
	for i := 0; i+len(foldedNeedle) <= len(folded); i++ {
		if folded[i:i+len(foldedNeedle)] == foldedNeedle {
			return true
		}
	}
	return false
}

// Close appends a placeholder record for every edge endpoint that matches
// no known caption, so that each edge can be resolved against the field
// list. Placeholders land in the Unknown datasource, in first-reference
// order, with sequence numbers continuing after the highest existing one.
func Close(records []*catalog.Field, edges []catalog.Edge) []*catalog.Field {
	known := make(map[string]struct{}, len(records))
	nextSeq := 0
	for _, f := range records {
		known[catalog.Fold(f.Caption)] = struct{}{}
		if f.Sequence >= nextSeq {
			nextSeq = f.Sequence + 1
		}
	}

	for _, e := range edges {
		for _, caption := range []string{e.From, e.To} {
			key := catalog.Fold(caption)
			if _, ok := known[key]; ok {
				continue
			}
			known[key] = struct{}{}
			records = append(records, &catalog.Field{
				ID:                catalog.Bracket(caption),
				Name:              caption,
				Caption:           caption,
				DatasourceName:    catalog.UnknownDatasource,
				DatasourceCaption: catalog.UnknownDatasource,
				Category:          catalog.CategoryDefault,
				Sequence:          nextSeq,
			})
			nextSeq++
		}
	}
	return records
}
