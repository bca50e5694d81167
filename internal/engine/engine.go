// Package engine orchestrates workbook analysis against the catalog store.
// It handles workbook discovery, incremental re-analysis, and persistence.
package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fieldlens-labs/fieldlens/internal/analyzer"
	"github.com/fieldlens-labs/fieldlens/internal/dag"
	"github.com/fieldlens-labs/fieldlens/internal/state"
	"github.com/fieldlens-labs/fieldlens/internal/workbook"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// Engine coordinates workbook analysis and catalog persistence.
type Engine struct {
	// Structured logger
	logger *slog.Logger

	store        state.Store
	workbooksDir string
	strategy     catalog.Strategy
}

// Config holds engine configuration.
type Config struct {
	// WorkbooksDir is the path to the workbooks directory
	WorkbooksDir string
	// StatePath is the path to the SQLite catalog database
	StatePath string
	// Strategy selects the dependency derivation strategy
	// (defaults to token-scan)
	Strategy catalog.Strategy
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine and opens the catalog store.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = catalog.StrategyTokenScan
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown derivation strategy %q", strategy)
	}

	logger.Debug("initializing engine", "workbooks_dir", cfg.WorkbooksDir, "strategy", strategy)

	// Create catalog store (always needed)
	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}

	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate catalog store: %w", err)
	}

	return &Engine{
		logger:       logger,
		store:        store,
		workbooksDir: cfg.WorkbooksDir,
		strategy:     strategy,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// AnalyzeFile opens and analyzes a single workbook without touching the
// catalog. Discover is the persisting path; this one serves commands that
// inspect an individual file.
func (e *Engine) AnalyzeFile(path string) (*workbook.Workbook, *catalog.Analysis, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, nil, err
	}

	a := analyzer.Analyze(wb.Root, analyzer.Options{Strategy: e.strategy})

	e.logger.Debug("analyzed workbook",
		"path", path,
		"fields", len(a.Fields),
		"calcs", len(a.Calcs),
		"edges", len(a.Relationships))

	return wb, a, nil
}

// Graph builds the dependency graph for an analysis.
func (e *Engine) Graph(a *catalog.Analysis) *dag.Graph {
	return dag.FromAnalysis(a)
}

// Store returns the catalog store.
func (e *Engine) Store() state.Store {
	return e.store
}

// Strategy returns the configured derivation strategy.
func (e *Engine) Strategy() catalog.Strategy {
	return e.strategy
}
