// Package docs generates static documentation sites for field catalogs.
// It exports workbook metadata, fields, and dependency lineage to JSON and
// generates a self-contained static site that can be hosted on GitHub Pages
// or similar.
package docs

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldlens-labs/fieldlens/internal/dag"
	"github.com/fieldlens-labs/fieldlens/internal/state"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

//go:embed static/*
var staticFiles embed.FS

// FieldDoc represents a field for documentation purposes.
type FieldDoc struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Caption            string   `json:"caption"`
	Alias              string   `json:"alias,omitempty"`
	DatasourceName     string   `json:"datasource_name"`
	DatasourceCaption  string   `json:"datasource_caption"`
	Role               string   `json:"role,omitempty"`
	DataType           string   `json:"datatype,omitempty"`
	DefaultAggregation string   `json:"default_aggregation,omitempty"`
	SemanticRole       string   `json:"semantic_role,omitempty"`
	Hidden             bool     `json:"hidden,omitempty"`
	Description        string   `json:"description,omitempty"`
	Formula            string   `json:"formula,omitempty"`
	RawFormula         string   `json:"raw_formula,omitempty"`
	Category           string   `json:"category"`
	Dependencies       []string `json:"dependencies"`
	Dependents         []string `json:"dependents"`
}

// LineageEdge represents an edge in the dependency graph.
type LineageEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// LineageDoc represents the full lineage graph of one workbook.
type LineageDoc struct {
	Nodes []string      `json:"nodes"`
	Edges []LineageEdge `json:"edges"`
}

// WorkbookStats summarizes one workbook for catalog headers.
type WorkbookStats struct {
	Datasources int `json:"datasources"`
	Fields      int `json:"fields"`
	Calcs       int `json:"calcs"`
	Edges       int `json:"edges"`
}

// WorkbookDoc represents an analyzed workbook for documentation purposes.
type WorkbookDoc struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	Version    string        `json:"version,omitempty"`
	Strategy   string        `json:"strategy"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Fields     []*FieldDoc   `json:"fields"`
	Lineage    LineageDoc    `json:"lineage"`
	Stats      WorkbookStats `json:"stats"`
}

// CatalogTotals aggregates counts across all workbooks in the catalog.
type CatalogTotals struct {
	Workbooks int `json:"workbooks"`
	Fields    int `json:"fields"`
	Calcs     int `json:"calcs"`
	Edges     int `json:"edges"`
}

// Catalog represents the full documentation catalog.
type Catalog struct {
	GeneratedAt time.Time      `json:"generated_at"`
	ProjectName string         `json:"project_name"`
	Workbooks   []*WorkbookDoc `json:"workbooks"`
	Totals      CatalogTotals  `json:"totals"`
}

// Generator generates documentation from the catalog store.
type Generator struct {
	store       state.Store
	projectName string
}

// NewGenerator creates a new documentation generator.
func NewGenerator(store state.Store, projectName string) *Generator {
	return &Generator{
		store:       store,
		projectName: projectName,
	}
}

// GenerateCatalog generates the documentation catalog from stored analyses.
func (g *Generator) GenerateCatalog() (*Catalog, error) {
	records, err := g.store.ListWorkbooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list workbooks: %w", err)
	}

	cat := &Catalog{
		GeneratedAt: time.Now().UTC(),
		ProjectName: g.projectName,
		Workbooks:   make([]*WorkbookDoc, 0, len(records)),
	}

	for _, rec := range records {
		doc, err := g.generateWorkbookDoc(rec)
		if err != nil {
			return nil, err
		}
		cat.Workbooks = append(cat.Workbooks, doc)
		cat.Totals.Fields += doc.Stats.Fields
		cat.Totals.Calcs += doc.Stats.Calcs
		cat.Totals.Edges += doc.Stats.Edges
	}
	cat.Totals.Workbooks = len(cat.Workbooks)

	return cat, nil
}

// generateWorkbookDoc builds the documentation entry for one workbook.
func (g *Generator) generateWorkbookDoc(rec *state.WorkbookRecord) (*WorkbookDoc, error) {
	fields, err := g.store.ListFields(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields for %s: %w", rec.Name, err)
	}
	edges, err := g.store.ListEdges(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges for %s: %w", rec.Name, err)
	}

	doc := &WorkbookDoc{
		ID:         rec.ID,
		Name:       rec.Name,
		Path:       rec.Path,
		Version:    rec.Version,
		Strategy:   string(rec.Strategy),
		AnalyzedAt: rec.AnalyzedAt,
		Fields:     make([]*FieldDoc, 0, len(fields)),
		Lineage: LineageDoc{
			Nodes: make([]string, 0, len(fields)),
			Edges: []LineageEdge{},
		},
	}

	fieldDocs := make(map[string]*FieldDoc)
	datasources := make(map[string]struct{})
	for _, f := range fields {
		fd := convertField(f)
		fieldDocs[f.Caption] = fd
		doc.Fields = append(doc.Fields, fd)
		doc.Lineage.Nodes = append(doc.Lineage.Nodes, f.Caption)
		datasources[f.DatasourceCaption] = struct{}{}
		if f.IsCalc() {
			doc.Stats.Calcs++
		}
	}
	doc.Stats.Datasources = len(datasources)
	doc.Stats.Fields = len(doc.Fields)
	doc.Stats.Edges = len(edges)

	// Build per-field dependency lists (references deduplicated,
	// multiplicity kept only in the edge list)
	for _, e := range edges {
		doc.Lineage.Edges = append(doc.Lineage.Edges, LineageEdge{
			Source: e.From,
			Target: e.To,
		})
		if target, ok := fieldDocs[e.To]; ok && !containsString(target.Dependencies, e.From) {
			target.Dependencies = append(target.Dependencies, e.From)
		}
		if source, ok := fieldDocs[e.From]; ok && !containsString(source.Dependents, e.To) {
			source.Dependents = append(source.Dependents, e.To)
		}
	}

	return doc, nil
}

// convertField converts a catalog.Field to a FieldDoc.
func convertField(f *catalog.Field) *FieldDoc {
	return &FieldDoc{
		ID:                 f.ID,
		Name:               f.Name,
		Caption:            f.Caption,
		Alias:              f.Alias,
		DatasourceName:     f.DatasourceName,
		DatasourceCaption:  f.DatasourceCaption,
		Role:               f.Role,
		DataType:           f.DataType,
		DefaultAggregation: f.DefaultAggregation,
		SemanticRole:       f.SemanticRole,
		Hidden:             f.Hidden,
		Description:        f.Description,
		Formula:            f.Formula,
		RawFormula:         f.RawFormula,
		Category:           string(f.Category),
		Dependencies:       []string{},
		Dependents:         []string{},
	}
}

// graphFor reconstructs the dependency graph for a workbook doc.
func (g *Generator) graphFor(rec *state.WorkbookRecord) (*dag.Graph, error) {
	fields, err := g.store.ListFields(rec.ID)
	if err != nil {
		return nil, err
	}
	edges, err := g.store.ListEdges(rec.ID)
	if err != nil {
		return nil, err
	}
	return dag.FromAnalysis(&catalog.Analysis{Fields: fields, Relationships: edges}), nil
}

// Build generates the static site to the output directory.
func (g *Generator) Build(outputDir string) error {
	cat, err := g.GenerateCatalog()
	if err != nil {
		return err
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Create data directory
	dataDir := filepath.Join(outputDir, "data")
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Write catalog.json
	catalogJSON, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "catalog.json"), catalogJSON, 0600); err != nil {
		return fmt.Errorf("failed to write catalog.json: %w", err)
	}

	// Write manifest.json
	manifestJSON, err := json.MarshalIndent(GenerateManifest(cat), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "manifest.json"), manifestJSON, 0600); err != nil {
		return fmt.Errorf("failed to write manifest.json: %w", err)
	}

	// Write per-workbook markdown and DOT graphs
	markdownDir := filepath.Join(outputDir, "markdown")
	graphsDir := filepath.Join(outputDir, "graphs")
	if err := os.MkdirAll(markdownDir, 0750); err != nil {
		return fmt.Errorf("failed to create markdown directory: %w", err)
	}
	if err := os.MkdirAll(graphsDir, 0750); err != nil {
		return fmt.Errorf("failed to create graphs directory: %w", err)
	}

	records, err := g.store.ListWorkbooks()
	if err != nil {
		return fmt.Errorf("failed to list workbooks: %w", err)
	}
	for i, doc := range cat.Workbooks {
		mdPath := filepath.Join(markdownDir, doc.Name+".md")
		if err := os.WriteFile(mdPath, []byte(Markdown(doc)), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", mdPath, err)
		}

		graph, err := g.graphFor(records[i])
		if err != nil {
			return fmt.Errorf("failed to build graph for %s: %w", doc.Name, err)
		}
		dotPath := filepath.Join(graphsDir, doc.Name+".dot")
		if err := os.WriteFile(dotPath, []byte(DOT(doc.Name, graph)), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", dotPath, err)
		}
	}

	// Copy static files
	if err := copyStaticFiles(outputDir); err != nil {
		return fmt.Errorf("failed to copy static files: %w", err)
	}

	return nil
}

// copyStaticFiles writes the embedded site assets into the output
// directory, mirroring the static/ tree.
func copyStaticFiles(outputDir string) error {
	return fs.WalkDir(staticFiles, "static", func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == "static" {
			return err
		}

		outPath := filepath.Join(outputDir, strings.TrimPrefix(path, "static/"))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0750)
		}

		content, err := staticFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		return os.WriteFile(outPath, content, 0600)
	})
}

// ServeFromFS serves the generated documentation site without watch mode.
func ServeFromFS(outputDir string, port int) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           http.FileServer(http.Dir(outputDir)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	fmt.Printf("Serving docs at http://localhost%s\n", server.Addr)
	return server.ListenAndServe()
}

// WriteJSON writes any data structure to an indented JSON file.
func WriteJSON(path string, data interface{}) error {
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0600)
}

// CopyFile copies a file from src to dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: paths come from project config
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) //nolint:gosec // G304: paths come from project config
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func containsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}
