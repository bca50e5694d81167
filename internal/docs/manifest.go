// Package docs provides manifest generation for instant shell rendering.
package docs

import (
	"time"
)

// Manifest is the minimal data needed for instant shell render.
// It is parsed before the full catalog loads.
type Manifest struct {
	ProjectName string     `json:"project_name"`
	GeneratedAt time.Time  `json:"generated_at"`
	NavTree     []NavGroup `json:"nav_tree"`
	Stats       Stats      `json:"stats"`
}

// NavGroup represents one workbook in the navigation tree.
type NavGroup struct {
	Workbook string    `json:"workbook"`
	Fields   []NavItem `json:"fields"`
}

// NavItem represents a single field in the navigation tree.
type NavItem struct {
	Caption  string `json:"caption"`
	Category string `json:"category,omitempty"`
}

// Stats contains counts for the overview page.
type Stats struct {
	WorkbookCount  int `json:"workbook_count"`
	FieldCount     int `json:"field_count"`
	CalcCount      int `json:"calc_count"`
	ParameterCount int `json:"parameter_count"`
	EdgeCount      int `json:"edge_count"`
}

// GenerateManifest creates a Manifest from a Catalog.
// The manifest contains only the data needed for instant sidebar/nav rendering.
func GenerateManifest(cat *Catalog) *Manifest {
	navTree := make([]NavGroup, 0, len(cat.Workbooks))
	stats := Stats{WorkbookCount: len(cat.Workbooks)}

	for _, wb := range cat.Workbooks {
		items := make([]NavItem, 0, len(wb.Fields))
		for _, f := range wb.Fields {
			items = append(items, NavItem{
				Caption:  f.Caption,
				Category: f.Category,
			})
			stats.FieldCount++

			switch f.Category {
			case "calculated":
				stats.CalcCount++
			case "parameter":
				stats.ParameterCount++
			}
		}
		stats.EdgeCount += len(wb.Lineage.Edges)

		sortNavItems(items)
		navTree = append(navTree, NavGroup{
			Workbook: wb.Name,
			Fields:   items,
		})
	}

	// Sort workbooks alphabetically
	sortNavGroups(navTree)

	return &Manifest{
		ProjectName: cat.ProjectName,
		GeneratedAt: cat.GeneratedAt,
		NavTree:     navTree,
		Stats:       stats,
	}
}

// sortNavItems sorts NavItems by caption (simple bubble sort for small lists).
func sortNavItems(items []NavItem) {
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[i].Caption > items[j].Caption {
				items[i], items[j] = items[j], items[i]
			}
		}
	}
}

// sortNavGroups sorts NavGroups by workbook name.
func sortNavGroups(groups []NavGroup) {
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if groups[i].Workbook > groups[j].Workbook {
				groups[i], groups[j] = groups[j], groups[i]
			}
		}
	}
}
