package catalog

// Analysis is the complete result of analyzing one workbook document:
// the canonical field list, the calculation sublist, and the dependency
// edges between fields.
type Analysis struct {
	// Fields holds every canonical record, deduplicated and presentation
	// sorted, with placeholder records appended in first-reference order.
	Fields []*Field
	// Calcs holds the calculated fields and parameters, in Fields order.
	// Entries alias the Fields entries; mutating one mutates the other.
	Calcs []*Field
	// Relationships holds the dependency edges in derivation order,
	// multiplicity preserved.
	Relationships []Edge
	// Strategy records which edge derivation produced Relationships.
	Strategy Strategy
}

// Field returns the first field whose caption matches, or nil.
func (a *Analysis) Field(caption string) *Field {
	for _, f := range a.Fields {
		if f.Caption == caption {
			return f
		}
	}
	return nil
}

// Datasources returns the distinct datasource captions in field order.
func (a *Analysis) Datasources() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range a.Fields {
		if _, ok := seen[f.DatasourceCaption]; ok {
			continue
		}
		seen[f.DatasourceCaption] = struct{}{}
		out = append(out, f.DatasourceCaption)
	}
	return out
}

// DatasourceFields returns the fields belonging to the datasource with the
// given caption, in field order.
func (a *Analysis) DatasourceFields(caption string) []*Field {
	var out []*Field
	for _, f := range a.Fields {
		if f.DatasourceCaption == caption {
			out = append(out, f)
		}
	}
	return out
}
