package fields

import (
	"sort"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// DisplayNames builds the map from folded, bracket-stripped identifiers
// to bracketed friendly names used by the rewriter. Calculated fields and
// parameters always claim their slot, overwriting any earlier claim;
// plain fields claim only unclaimed slots.
func DisplayNames(records []*catalog.Field) map[string]string {
	names := make(map[string]string, len(records))
	for _, f := range records {
		key := catalog.Fold(f.StrippedID())
		if key == "" {
			continue
		}
		if f.IsCalc() {
			names[key] = f.FriendlyName()
			continue
		}
		if _, claimed := names[key]; !claimed {
			names[key] = f.FriendlyName()
		}
	}
	return names
}

// Dedupe keeps one record per identifier. Records from the Parameters
// datasource take precedence over same-identifier records elsewhere;
// among the rest, collection order wins.
func Dedupe(records []*catalog.Field) []*catalog.Field {
	ordered := make([]*catalog.Field, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := fromParameters(ordered[i]), fromParameters(ordered[j])
		if pi != pj {
			return pi
		}
		return ordered[i].Sequence < ordered[j].Sequence
	})

	seen := make(map[string]struct{}, len(ordered))
	kept := make([]*catalog.Field, 0, len(ordered))
	for _, f := range ordered {
		key := catalog.Fold(f.ID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, f)
	}
	return kept
}

func fromParameters(f *catalog.Field) bool {
	return catalog.Fold(f.DatasourceName) == parametersDatasource
}

// Sort orders records for presentation: parameters, then calculations,
// then plain fields; within a category by datasource caption, field name
// and finally collection order.
func Sort(records []*catalog.Field) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if ra, rb := a.Category.Rank(), b.Category.Rank(); ra != rb {
			return ra < rb
		}
		if a.DatasourceCaption != b.DatasourceCaption {
			return a.DatasourceCaption < b.DatasourceCaption
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Sequence < b.Sequence
	})
}
