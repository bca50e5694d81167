package output

// JSON output document types shared by commands.

// FieldInfo describes one catalog field in JSON output.
type FieldInfo struct {
	ID                 string   `json:"id"`
	Caption            string   `json:"caption"`
	Alias              string   `json:"alias,omitempty"`
	Datasource         string   `json:"datasource"`
	Role               string   `json:"role,omitempty"`
	DataType           string   `json:"datatype,omitempty"`
	DefaultAggregation string   `json:"default_aggregation,omitempty"`
	Hidden             bool     `json:"hidden,omitempty"`
	Description        string   `json:"description,omitempty"`
	Formula            string   `json:"formula,omitempty"`
	Category           string   `json:"category"`
	Dependencies       []string `json:"dependencies,omitempty"`
	Dependents         []string `json:"dependents,omitempty"`
}

// FieldsOutput is the JSON document for the fields command.
type FieldsOutput struct {
	Workbook string        `json:"workbook"`
	Strategy string        `json:"strategy"`
	Fields   []FieldInfo   `json:"fields"`
	Summary  FieldsSummary `json:"summary"`
}

// FieldsSummary aggregates field counts.
type FieldsSummary struct {
	Total       int `json:"total"`
	Calculated  int `json:"calculated"`
	Parameters  int `json:"parameters"`
	Hidden      int `json:"hidden"`
	Datasources int `json:"datasources"`
}

// GraphNode is one field in the graph command's JSON output.
type GraphNode struct {
	Caption   string   `json:"caption"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// GraphLevel groups fields that share an execution level.
type GraphLevel struct {
	Level  int         `json:"level"`
	Fields []GraphNode `json:"fields"`
}

// GraphOutput is the JSON document for the graph command.
type GraphOutput struct {
	Workbook    string       `json:"workbook"`
	Strategy    string       `json:"strategy"`
	Levels      []GraphLevel `json:"levels"`
	TotalFields int          `json:"total_fields"`
	TotalEdges  int          `json:"total_edges"`
}

// LineageOutput is the JSON document for the lineage command.
type LineageOutput struct {
	Workbook   string   `json:"workbook"`
	Field      string   `json:"field"`
	Direction  string   `json:"direction"`
	Upstream   []string `json:"upstream,omitempty"`
	Downstream []string `json:"downstream,omitempty"`
}

// DiscoverError is one non-fatal problem from a discovery run.
type DiscoverError struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DiscoverOutput is the JSON document for the discover command.
type DiscoverOutput struct {
	Total      int             `json:"total"`
	Analyzed   int             `json:"analyzed"`
	Skipped    int             `json:"skipped"`
	Deleted    int             `json:"deleted"`
	DurationMS int64           `json:"duration_ms"`
	StatePath  string          `json:"state_path"`
	Errors     []DiscoverError `json:"errors,omitempty"`
}

// WorkbookInfo describes one stored workbook in JSON output.
type WorkbookInfo struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Version    string `json:"version,omitempty"`
	Strategy   string `json:"strategy"`
	FieldCount int    `json:"field_count"`
	CalcCount  int    `json:"calc_count"`
	EdgeCount  int    `json:"edge_count"`
	AnalyzedAt string `json:"analyzed_at"`
}

// ListOutput is the JSON document for the list command.
type ListOutput struct {
	Workbooks []WorkbookInfo `json:"workbooks"`
	StatePath string         `json:"state_path"`
}

// ExportOutput is the JSON document for the export command.
type ExportOutput struct {
	Workbook string   `json:"workbook"`
	Files    []string `json:"files"`
}

// VersionOutput is the JSON document for the version command.
type VersionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}
