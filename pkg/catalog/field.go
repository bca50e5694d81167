package catalog

// Category classifies a field record.
type Category string

// Category constants, in presentation order.
const (
	CategoryParameter  Category = "parameter"
	CategoryCalculated Category = "calculated"
	CategoryDefault    Category = "default"
)

// Rank returns the presentation sort rank of the category.
// Parameters sort before calculations, which sort before plain fields.
func (c Category) Rank() int {
	switch c {
	case CategoryParameter:
		return 0
	case CategoryCalculated:
		return 1
	default:
		return 2
	}
}

// Strategy selects how dependency edges are derived from formulas.
type Strategy string

const (
	// StrategyTokenScan derives edges from bracketed tokens in rewritten
	// formulas. This is the canonical strategy.
	StrategyTokenScan Strategy = "token-scan"
	// StrategyContainment derives edges by probing every field identifier
	// against every original formula. Kept for comparability with older
	// catalogs; quadratic in the number of fields.
	StrategyContainment Strategy = "containment"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyTokenScan || s == StrategyContainment
}

// UnknownDatasource is the datasource assigned to placeholder fields
// synthesized for formula references that match no collected field.
const UnknownDatasource = "Unknown"

// Field is one canonical field record: a column, parameter, or calculated
// field collected from a workbook datasource, or a placeholder synthesized
// for an unresolved formula reference.
// Records are mutated while an analysis is assembled and are read-only
// afterwards. Persistence-specific fields (row IDs, timestamps) belong in
// state, not here.
type Field struct {
	// ID is the bracket-delimited identifier, e.g. "[Calculation_123]".
	// Synthesized from the name or the sequence number when the source
	// element carries no identifier of its own.
	ID string
	// Name is the element's name attribute ("" when absent)
	Name string
	// Caption is the display caption; falls back to Name when the source
	// carries none
	Caption string
	// Alias is the optional alias attribute
	Alias string
	// DatasourceName is the owning datasource's name attribute
	DatasourceName string
	// DatasourceCaption is the owning datasource's caption, defaulting to
	// its name
	DatasourceCaption string
	// Role is the measure/dimension role attribute, verbatim
	Role string
	// DataType is the declared datatype attribute, verbatim
	DataType string
	// DefaultAggregation is the default-aggregation attribute, verbatim
	DefaultAggregation string
	// SemanticRole is the semantic-role attribute, verbatim
	SemanticRole string
	// Nominal, Ordinal and Quantitative reflect the element's type
	// attribute; at most one is set
	Nominal      bool
	Ordinal      bool
	Quantitative bool
	// Hidden is true when the hidden attribute equals "true", any case
	Hidden bool
	// Description is the flattened text of the element's desc children
	Description string
	// Formula is the calculation formula. The rewriter edits it in place,
	// replacing raw identifiers with friendly names.
	Formula string
	// RawFormula is the formula exactly as collected. Never modified;
	// containment edge derivation reads this, not Formula.
	RawFormula string
	// Category classifies the record: parameter, calculated, or default
	Category Category
	// Sequence is the global collection order, the tie-break of last
	// resort and the source of synthesized identifiers
	Sequence int
}

// FriendlyName returns the bracketed display name of the field:
// the caption when present, the name otherwise.
func (f *Field) FriendlyName() string {
	if f.Caption != "" {
		return Bracket(f.Caption)
	}
	return Bracket(f.Name)
}

// StrippedID returns the identifier without its surrounding brackets.
func (f *Field) StrippedID() string {
	return Strip(f.ID)
}

// IsCalc reports whether the field belongs in the calculation list:
// calculated fields and parameters do, plain fields do not.
func (f *Field) IsCalc() bool {
	return f.Category == CategoryCalculated || f.Category == CategoryParameter
}

// Edge is one directed dependency between two fields, identified by
// caption: To's formula depends on From. Edges are immutable and carry
// multiplicity; a formula referencing the same field twice yields two
// edges.
type Edge struct {
	From string
	To   string
}
