// Package export writes workbook analyses as CSV and JSON artifacts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// fieldColumns is the CSV header for field exports, matching the
// catalog store's column layout.
var fieldColumns = []string{
	"id", "name", "caption", "alias",
	"datasource_name", "datasource_caption",
	"role", "datatype", "default_aggregation", "semantic_role",
	"nominal", "ordinal", "quantitative", "hidden",
	"description", "formula", "raw_formula",
	"category", "sequence",
}

// WriteFieldsCSV writes the field catalog as CSV, one row per field in
// catalog order.
func WriteFieldsCSV(w io.Writer, fields []*catalog.Field) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fieldColumns); err != nil {
		return fmt.Errorf("failed to write fields header: %w", err)
	}
	for _, f := range fields {
		record := []string{
			f.ID, f.Name, f.Caption, f.Alias,
			f.DatasourceName, f.DatasourceCaption,
			f.Role, f.DataType, f.DefaultAggregation, f.SemanticRole,
			strconv.FormatBool(f.Nominal), strconv.FormatBool(f.Ordinal),
			strconv.FormatBool(f.Quantitative), strconv.FormatBool(f.Hidden),
			f.Description, f.Formula, f.RawFormula,
			string(f.Category), strconv.Itoa(f.Sequence),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write field row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush fields CSV: %w", err)
	}
	return nil
}

// WriteEdgesCSV writes dependency edges as CSV in derivation order,
// multiplicity preserved.
func WriteEdgesCSV(w io.Writer, edges []catalog.Edge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to"}); err != nil {
		return fmt.Errorf("failed to write edges header: %w", err)
	}
	for _, e := range edges {
		if err := cw.Write([]string{e.From, e.To}); err != nil {
			return fmt.Errorf("failed to write edge row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush edges CSV: %w", err)
	}
	return nil
}

type workbookJSON struct {
	Name     string      `json:"name"`
	Strategy string      `json:"strategy"`
	Fields   []fieldJSON `json:"fields"`
	Edges    []edgeJSON  `json:"edges"`
}

type fieldJSON struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Caption            string `json:"caption"`
	Alias              string `json:"alias,omitempty"`
	DatasourceName     string `json:"datasource_name"`
	DatasourceCaption  string `json:"datasource_caption"`
	Role               string `json:"role,omitempty"`
	DataType           string `json:"datatype,omitempty"`
	DefaultAggregation string `json:"default_aggregation,omitempty"`
	SemanticRole       string `json:"semantic_role,omitempty"`
	Nominal            bool   `json:"nominal,omitempty"`
	Ordinal            bool   `json:"ordinal,omitempty"`
	Quantitative       bool   `json:"quantitative,omitempty"`
	Hidden             bool   `json:"hidden,omitempty"`
	Description        string `json:"description,omitempty"`
	Formula            string `json:"formula,omitempty"`
	RawFormula         string `json:"raw_formula,omitempty"`
	Category           string `json:"category"`
	Sequence           int    `json:"sequence"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON writes one workbook's analysis as an indented JSON document.
func WriteJSON(w io.Writer, name string, a *catalog.Analysis) error {
	doc := workbookJSON{
		Name:     name,
		Strategy: string(a.Strategy),
		Fields:   make([]fieldJSON, 0, len(a.Fields)),
		Edges:    make([]edgeJSON, 0, len(a.Relationships)),
	}
	for _, f := range a.Fields {
		doc.Fields = append(doc.Fields, fieldJSON{
			ID: f.ID, Name: f.Name, Caption: f.Caption, Alias: f.Alias,
			DatasourceName: f.DatasourceName, DatasourceCaption: f.DatasourceCaption,
			Role: f.Role, DataType: f.DataType,
			DefaultAggregation: f.DefaultAggregation, SemanticRole: f.SemanticRole,
			Nominal: f.Nominal, Ordinal: f.Ordinal,
			Quantitative: f.Quantitative, Hidden: f.Hidden,
			Description: f.Description, Formula: f.Formula, RawFormula: f.RawFormula,
			Category: string(f.Category), Sequence: f.Sequence,
		})
	}
	for _, e := range a.Relationships {
		doc.Edges = append(doc.Edges, edgeJSON{From: e.From, To: e.To})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workbook JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write workbook JSON: %w", err)
	}
	return nil
}

// Files writes the fields CSV, edges CSV, and workbook JSON for one
// analysis into dir, returning the written paths in that order.
func Files(dir, name string, a *catalog.Analysis) ([]string, error) {
	if a == nil {
		return nil, fmt.Errorf("analysis is nil")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{filepath.Join(dir, name+".fields.csv"), func(w io.Writer) error { return WriteFieldsCSV(w, a.Fields) }},
		{filepath.Join(dir, name+".edges.csv"), func(w io.Writer) error { return WriteEdgesCSV(w, a.Relationships) }},
		{filepath.Join(dir, name+".json"), func(w io.Writer) error { return WriteJSON(w, name, a) }},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		if err := writeFile(wr.path, wr.write); err != nil {
			return nil, err
		}
		paths = append(paths, wr.path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}
