package docs

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlens-labs/fieldlens/internal/state"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

func newTestStore(t *testing.T, path string) *state.SQLiteStore {
	t.Helper()

	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(path))
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func seedAnalysis() *catalog.Analysis {
	sales := &catalog.Field{
		ID: "[Sales]", Name: "[Sales]", Caption: "Sales",
		DatasourceName: "orders", DatasourceCaption: "Orders",
		Role: "measure", DataType: "real", Quantitative: true,
		Category: catalog.CategoryDefault, Sequence: 0,
	}
	profit := &catalog.Field{
		ID: "[Profit]", Name: "[Profit]", Caption: "Profit",
		DatasourceName: "orders", DatasourceCaption: "Orders",
		Role: "measure", DataType: "real", Quantitative: true, Hidden: true,
		Category: catalog.CategoryDefault, Sequence: 1,
	}
	ratio := &catalog.Field{
		ID: "[Calculation_5]", Name: "[Calculation_5]", Caption: "Profit Ratio",
		DatasourceName: "orders", DatasourceCaption: "Orders",
		Role: "measure", DataType: "real",
		Formula: "[Profit] / [Sales]", RawFormula: "[Profit] / [Sales]",
		Category: catalog.CategoryCalculated, Sequence: 2,
	}
	return &catalog.Analysis{
		Fields: []*catalog.Field{ratio, profit, sales},
		Calcs:  []*catalog.Field{ratio},
		Relationships: []catalog.Edge{
			{From: "Profit", To: "Profit Ratio"},
			{From: "Sales", To: "Profit Ratio"},
			{From: "Profit", To: "Profit Ratio"},
		},
		Strategy: catalog.StrategyTokenScan,
	}
}

func seedStore(t *testing.T, store state.Store) *state.WorkbookRecord {
	t.Helper()

	rec, err := store.SaveAnalysis(state.WorkbookRecord{
		Name:     "superstore",
		Path:     "/workbooks/superstore.twb",
		Version:  "2024.1",
		Strategy: catalog.StrategyTokenScan,
	}, seedAnalysis())
	require.NoError(t, err)
	return rec
}

func TestGenerateCatalog(t *testing.T) {
	store := newTestStore(t, ":memory:")
	seedStore(t, store)

	gen := NewGenerator(store, "acme-analytics")
	cat, err := gen.GenerateCatalog()
	require.NoError(t, err)

	assert.Equal(t, "acme-analytics", cat.ProjectName)
	assert.False(t, cat.GeneratedAt.IsZero())
	require.Len(t, cat.Workbooks, 1)

	wb := cat.Workbooks[0]
	assert.Equal(t, "superstore", wb.Name)
	assert.Equal(t, "token-scan", wb.Strategy)
	require.Len(t, wb.Fields, 3)

	// Stored field order carries through
	assert.Equal(t, "Profit Ratio", wb.Fields[0].Caption)
	assert.Equal(t, "calculated", wb.Fields[0].Category)
	assert.True(t, wb.Fields[1].Hidden)

	// Dependency lists are deduplicated, the edge list is not
	assert.Equal(t, []string{"Profit", "Sales"}, wb.Fields[0].Dependencies)
	assert.Equal(t, []string{"Profit Ratio"}, wb.Fields[2].Dependents)
	assert.Len(t, wb.Lineage.Edges, 3)
	assert.Equal(t, []string{"Profit Ratio", "Profit", "Sales"}, wb.Lineage.Nodes)

	assert.Equal(t, WorkbookStats{Datasources: 1, Fields: 3, Calcs: 1, Edges: 3}, wb.Stats)
	assert.Equal(t, CatalogTotals{Workbooks: 1, Fields: 3, Calcs: 1, Edges: 3}, cat.Totals)
}

func TestGenerateCatalog_EmptyStore(t *testing.T) {
	store := newTestStore(t, ":memory:")

	gen := NewGenerator(store, "empty")
	cat, err := gen.GenerateCatalog()
	require.NoError(t, err)
	assert.Empty(t, cat.Workbooks)
}

func TestBuild(t *testing.T) {
	store := newTestStore(t, ":memory:")
	seedStore(t, store)

	outputDir := filepath.Join(t.TempDir(), "site")
	gen := NewGenerator(store, "acme-analytics")
	require.NoError(t, gen.Build(outputDir))

	for _, rel := range []string{
		"index.html",
		filepath.Join("data", "catalog.json"),
		filepath.Join("data", "manifest.json"),
		filepath.Join("markdown", "superstore.md"),
		filepath.Join("graphs", "superstore.dot"),
	} {
		_, err := os.Stat(filepath.Join(outputDir, rel))
		assert.NoError(t, err, "expected %s to exist", rel)
	}

	raw, err := os.ReadFile(filepath.Join(outputDir, "data", "catalog.json"))
	require.NoError(t, err)
	var cat Catalog
	require.NoError(t, json.Unmarshal(raw, &cat))
	require.Len(t, cat.Workbooks, 1)
	assert.Equal(t, "superstore", cat.Workbooks[0].Name)

	raw, err = os.ReadFile(filepath.Join(outputDir, "data", "manifest.json"))
	require.NoError(t, err)
	var manifest Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, 3, manifest.Stats.FieldCount)
	assert.Equal(t, 1, manifest.Stats.CalcCount)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, map[string]int{"fields": 3}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 3, decoded["fields"])
}

func TestCopyCatalogDB(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "catalog.db")
	store := newTestStore(t, srcPath)
	seedStore(t, store)
	require.NoError(t, store.Close())

	outPath := filepath.Join(dir, "site.db")
	require.NoError(t, CopyCatalogDB(srcPath, outPath))

	db, err := sql.Open("sqlite", outPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM workbooks`).Scan(&count))
	assert.Equal(t, 1, count)
}
