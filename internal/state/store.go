// Package state persists analysis results in a SQLite catalog database.
// It tracks analyzed workbooks, their fields and edges, and content
// hashes for incremental discovery.
package state

import (
	"time"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// WorkbookRecord is the stored metadata of one analyzed workbook.
type WorkbookRecord struct {
	ID         string
	Name       string
	Path       string
	Version    string
	Strategy   catalog.Strategy
	FieldCount int
	CalcCount  int
	EdgeCount  int
	AnalyzedAt time.Time
}

// Store is the persistence interface for the catalog database.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// SaveAnalysis inserts or replaces the stored analysis for the
	// workbook named in meta and returns the persisted record. Counts
	// and the analyzed-at timestamp are filled in by the store.
	SaveAnalysis(meta WorkbookRecord, a *catalog.Analysis) (*WorkbookRecord, error)
	GetWorkbook(name string) (*WorkbookRecord, error)
	ListWorkbooks() ([]*WorkbookRecord, error)
	DeleteWorkbook(name string) error
	ListFields(workbookID string) ([]*catalog.Field, error)
	ListEdges(workbookID string) ([]catalog.Edge, error)

	GetContentHash(filePath string) (string, error)
	SetContentHash(filePath, hash, fileType string) error
	DeleteContentHash(filePath string) error
}
