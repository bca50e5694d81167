package docs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateManifest(t *testing.T) {
	cat := &Catalog{
		GeneratedAt: time.Now().UTC(),
		ProjectName: "acme-analytics",
		Workbooks: []*WorkbookDoc{
			{
				Name: "zeta",
				Fields: []*FieldDoc{
					{Caption: "Revenue", Category: "default"},
					{Caption: "Margin", Category: "calculated"},
				},
				Lineage: &LineageDoc{Edges: []*LineageEdge{{Source: "Revenue", Target: "Margin"}}},
			},
			{
				Name: "alpha",
				Fields: []*FieldDoc{
					{Caption: "Top N", Category: "parameter"},
				},
				Lineage: &LineageDoc{},
			},
		},
	}

	manifest := GenerateManifest(cat)

	assert.Equal(t, "acme-analytics", manifest.ProjectName)
	assert.Equal(t, cat.GeneratedAt, manifest.GeneratedAt)

	// Nav groups sort by workbook, items by caption
	require.Len(t, manifest.NavTree, 2)
	assert.Equal(t, "alpha", manifest.NavTree[0].Workbook)
	assert.Equal(t, "zeta", manifest.NavTree[1].Workbook)
	require.Len(t, manifest.NavTree[1].Fields, 2)
	assert.Equal(t, "Margin", manifest.NavTree[1].Fields[0].Caption)
	assert.Equal(t, "Revenue", manifest.NavTree[1].Fields[1].Caption)

	assert.Equal(t, 2, manifest.Stats.WorkbookCount)
	assert.Equal(t, 3, manifest.Stats.FieldCount)
	assert.Equal(t, 1, manifest.Stats.CalcCount)
	assert.Equal(t, 1, manifest.Stats.ParameterCount)
	assert.Equal(t, 1, manifest.Stats.EdgeCount)
}

func TestGenerateManifest_Empty(t *testing.T) {
	manifest := GenerateManifest(&Catalog{ProjectName: "empty"})

	assert.Empty(t, manifest.NavTree)
	assert.Equal(t, 0, manifest.Stats.WorkbookCount)
	assert.Equal(t, 0, manifest.Stats.FieldCount)
}
