// Package engine orchestrates workbook analysis against the catalog store.
// discovery.go contains the incremental discovery system for workbooks.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldlens-labs/fieldlens/internal/analyzer"
	"github.com/fieldlens-labs/fieldlens/internal/state"
	"github.com/fieldlens-labs/fieldlens/internal/workbook"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// DiscoveryOptions configures the discovery process.
type DiscoveryOptions struct {
	ForceFullRefresh bool   // Ignore content hashes, re-analyze everything
	WorkbooksDir     string // Override default workbooks directory
}

// DiscoveryResult contains statistics about the discovery run.
type DiscoveryResult struct {
	// Workbooks
	WorkbooksTotal    int
	WorkbooksAnalyzed int
	WorkbooksSkipped  int
	WorkbooksDeleted  int

	// Errors (non-fatal)
	Errors []DiscoveryError

	// Timing
	Duration time.Duration
}

// DiscoveryError represents a non-fatal error during discovery.
type DiscoveryError struct {
	Path    string
	Type    string // "open", "analyze", "save"
	Message string
}

// HasErrors returns true if any errors occurred.
func (r *DiscoveryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a human-readable summary.
func (r *DiscoveryResult) Summary() string {
	return fmt.Sprintf(
		"Workbooks: %d total (%d analyzed, %d skipped, %d deleted) | Duration: %s",
		r.WorkbooksTotal, r.WorkbooksAnalyzed, r.WorkbooksSkipped, r.WorkbooksDeleted,
		r.Duration.Round(time.Millisecond),
	)
}

// Discover scans the workbooks directory and re-analyzes changed files.
// The catalog store mirrors the directory: deleted files drop out of it.
func (e *Engine) Discover(opts DiscoveryOptions) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	workbooksDir := e.workbooksDir
	if opts.WorkbooksDir != "" {
		workbooksDir = opts.WorkbooksDir
	}
	if workbooksDir == "" {
		return result, fmt.Errorf("no workbooks directory configured")
	}

	// Ensure workbooksDir is absolute for consistent path resolution
	absDir, err := filepath.Abs(workbooksDir)
	if err != nil {
		return result, fmt.Errorf("failed to resolve workbooks directory: %w", err)
	}

	e.logger.Info("starting discovery", "workbooks_dir", absDir)

	// 1. Collect candidate workbook files
	paths, err := collectWorkbookFiles(absDir)
	if err != nil {
		return result, fmt.Errorf("workbook scan failed: %w", err)
	}

	// 2. Skip workbooks whose content hash is unchanged
	seenFiles := make(map[string]bool)
	var pending []pendingWorkbook
	for _, path := range paths {
		seenFiles[path] = true
		result.WorkbooksTotal++

		needsAnalyze, newHash := e.shouldAnalyzeFile(path, opts.ForceFullRefresh)
		if !needsAnalyze {
			e.logger.Debug("skipping unchanged workbook", "path", path)
			result.WorkbooksSkipped++
			continue
		}
		pending = append(pending, pendingWorkbook{path: path, hash: newHash})
	}

	// 3. Analyze changed workbooks in parallel
	analyses := e.analyzePending(pending)

	// 4. Persist sequentially (the catalog store is a single writer)
	for i, pw := range pending {
		an := analyses[i]
		if an.err != nil {
			e.logger.Debug("workbook analysis error", "path", pw.path, "error", an.err.Error())
			result.Errors = append(result.Errors, DiscoveryError{
				Path: pw.path, Type: an.errType, Message: an.err.Error(),
			})
			continue // Continue with other files (graceful degradation)
		}

		if err := e.saveWorkbookToStore(an.wb, an.analysis, pw.hash); err != nil {
			result.Errors = append(result.Errors, DiscoveryError{
				Path: pw.path, Type: "save", Message: err.Error(),
			})
			continue
		}

		result.WorkbooksAnalyzed++
	}

	// 5. Remove workbooks whose files no longer exist
	result.WorkbooksDeleted = e.cleanupDeletedWorkbooks(seenFiles)

	result.Duration = time.Since(start)

	e.logger.Info("discovery completed",
		"workbooks_total", result.WorkbooksTotal,
		"workbooks_analyzed", result.WorkbooksAnalyzed,
		"workbooks_skipped", result.WorkbooksSkipped,
		"workbooks_deleted", result.WorkbooksDeleted,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

type pendingWorkbook struct {
	path string
	hash string
}

type analyzedWorkbook struct {
	wb       *workbook.Workbook
	analysis *catalog.Analysis
	err      error
	errType  string
}

// collectWorkbookFiles walks dir and returns the absolute paths of all
// workbook files in walk order.
func collectWorkbookFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil || info.IsDir() {
			return nil //nolint:nilerr // Skip unreadable entries and directories
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		if ext != ".twb" && ext != ".twbx" {
			return nil
		}
		absPath, _ := filepath.Abs(path)
		paths = append(paths, absPath)
		return nil
	})
	return paths, err
}

// shouldAnalyzeFile checks if a file needs re-analysis based on content hash.
func (e *Engine) shouldAnalyzeFile(filePath string, forceRefresh bool) (needsAnalyze bool, newHash string) {
	content, err := os.ReadFile(filePath) //nolint:gosec // G304: filePath comes from filepath.Walk
	if err != nil {
		return true, "" // File error, try to analyze anyway
	}
	newHash = computeHash(content)

	if forceRefresh {
		return true, newHash
	}

	// Check existing hash in the catalog
	existingHash, err := e.store.GetContentHash(filePath)
	if err != nil || existingHash == "" {
		return true, newHash // No existing record, must analyze
	}

	return existingHash != newHash, newHash
}

// analyzePending opens and analyzes the pending workbooks concurrently.
// Results line up index-for-index with the input.
func (e *Engine) analyzePending(pending []pendingWorkbook) []analyzedWorkbook {
	results := make([]analyzedWorkbook, len(pending))
	if len(pending) == 0 {
		return results
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(pending) {
		numWorkers = len(pending)
	}

	g := new(errgroup.Group)
	g.SetLimit(numWorkers)
	for i, pw := range pending {
		g.Go(func() error {
			wb, err := workbook.Open(pw.path)
			if err != nil {
				results[i] = analyzedWorkbook{err: err, errType: "open"}
				return nil
			}
			a := analyzer.Analyze(wb.Root, analyzer.Options{Strategy: e.strategy})
			results[i] = analyzedWorkbook{wb: wb, analysis: a}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// saveWorkbookToStore persists an analysis and records the file's hash.
func (e *Engine) saveWorkbookToStore(wb *workbook.Workbook, a *catalog.Analysis, hash string) error {
	meta := state.WorkbookRecord{
		Name:     wb.Name,
		Path:     wb.Path,
		Version:  wb.Version,
		Strategy: a.Strategy,
	}

	saved, err := e.store.SaveAnalysis(meta, a)
	if err != nil {
		return err
	}

	e.logger.Debug("saved workbook analysis",
		"name", saved.Name,
		"fields", saved.FieldCount,
		"edges", saved.EdgeCount)

	if hash == "" {
		return nil
	}

	// Update content hash
	return e.store.SetContentHash(wb.Path, hash, strings.TrimPrefix(filepath.Ext(wb.Path), "."))
}

// cleanupDeletedWorkbooks removes catalog entries for files that no longer exist.
func (e *Engine) cleanupDeletedWorkbooks(seenFiles map[string]bool) int {
	deleted := 0
	records, err := e.store.ListWorkbooks()
	if err != nil {
		return 0
	}

	for _, rec := range records {
		if rec.Path == "" || seenFiles[rec.Path] {
			continue
		}
		_ = e.store.DeleteWorkbook(rec.Name)
		_ = e.store.DeleteContentHash(rec.Path)
		deleted++
	}

	return deleted
}

// computeHash generates a SHA256 hash of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:8]) // Use first 8 bytes for brevity
}
