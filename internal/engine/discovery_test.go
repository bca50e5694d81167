package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const changedWorkbookXML = `<?xml version='1.0' encoding='utf-8' ?>
<workbook source-build='2024.1 (20241.24.0114.1153)' version='18.1'>
  <datasources>
    <datasource name='federated.0a1b2c' caption='Orders'>
      <column datatype='real' name='[Sales]' role='measure' type='quantitative' />
      <column datatype='real' name='[Profit]' role='measure' type='quantitative' />
      <column datatype='real' name='[Discount]' role='measure' type='quantitative' />
      <column caption='Profit Ratio' datatype='real' name='[Calculation_1]' role='measure' type='quantitative'>
        <calculation class='tableau' formula='[Profit] / [Sales]' />
      </column>
    </datasource>
  </datasources>
</workbook>`

// TestShouldAnalyzeFile_NewFile tests that unseen files are analyzed.
func TestShouldAnalyzeFile_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "superstore.twb", testWorkbookXML)
	eng := newTestEngine(t, dir)

	// File not in the catalog -> should analyze
	needsAnalyze, hash := eng.shouldAnalyzeFile(path, false)
	if !needsAnalyze {
		t.Error("Expected needsAnalyze=true for new file")
	}
	if hash == "" {
		t.Error("Expected non-empty hash")
	}
}

// TestShouldAnalyzeFile_UnchangedFile tests that unchanged files are skipped.
func TestShouldAnalyzeFile_UnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "superstore.twb", testWorkbookXML)
	eng := newTestEngine(t, dir)

	_, hash := eng.shouldAnalyzeFile(path, false)
	if err := eng.store.SetContentHash(path, hash, "twb"); err != nil {
		t.Fatalf("SetContentHash failed: %v", err)
	}

	needsAnalyze, _ := eng.shouldAnalyzeFile(path, false)
	if needsAnalyze {
		t.Error("Expected needsAnalyze=false for unchanged file")
	}

	// Force refresh overrides the stored hash
	needsAnalyze, _ = eng.shouldAnalyzeFile(path, true)
	if !needsAnalyze {
		t.Error("Expected needsAnalyze=true with force refresh")
	}
}

// TestDiscover_AnalyzesNewWorkbooks tests a first discovery run.
func TestDiscover_AnalyzesNewWorkbooks(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "alpha.twb", testWorkbookXML)
	writeWorkbook(t, dir, "beta.twb", testWorkbookXML)
	eng := newTestEngine(t, dir)

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if result.WorkbooksTotal != 2 {
		t.Errorf("Expected 2 total, got %d", result.WorkbooksTotal)
	}
	if result.WorkbooksAnalyzed != 2 {
		t.Errorf("Expected 2 analyzed, got %d", result.WorkbooksAnalyzed)
	}
	if result.HasErrors() {
		t.Errorf("Unexpected errors: %v", result.Errors)
	}

	records, err := eng.store.ListWorkbooks()
	if err != nil {
		t.Fatalf("ListWorkbooks() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 stored workbooks, got %d", len(records))
	}
	if records[0].Name != "alpha" || records[1].Name != "beta" {
		t.Errorf("Unexpected workbook names: %s, %s", records[0].Name, records[1].Name)
	}
	if records[0].FieldCount != 3 || records[0].EdgeCount != 2 {
		t.Errorf("Unexpected counts: fields=%d edges=%d", records[0].FieldCount, records[0].EdgeCount)
	}
}

// TestDiscover_SkipsUnchanged tests that a second run skips everything.
func TestDiscover_SkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "alpha.twb", testWorkbookXML)
	eng := newTestEngine(t, dir)

	if _, err := eng.Discover(DiscoveryOptions{}); err != nil {
		t.Fatalf("first Discover() failed: %v", err)
	}

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("second Discover() failed: %v", err)
	}
	if result.WorkbooksSkipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", result.WorkbooksSkipped)
	}
	if result.WorkbooksAnalyzed != 0 {
		t.Errorf("Expected 0 analyzed, got %d", result.WorkbooksAnalyzed)
	}

	// Force refresh re-analyzes despite matching hashes
	result, err = eng.Discover(DiscoveryOptions{ForceFullRefresh: true})
	if err != nil {
		t.Fatalf("forced Discover() failed: %v", err)
	}
	if result.WorkbooksAnalyzed != 1 {
		t.Errorf("Expected 1 analyzed with force, got %d", result.WorkbooksAnalyzed)
	}
}

// TestDiscover_ReanalyzesChangedFile tests hash-based change detection.
func TestDiscover_ReanalyzesChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "alpha.twb", testWorkbookXML)
	writeWorkbook(t, dir, "beta.twb", testWorkbookXML)
	eng := newTestEngine(t, dir)

	if _, err := eng.Discover(DiscoveryOptions{}); err != nil {
		t.Fatalf("first Discover() failed: %v", err)
	}

	writeWorkbook(t, dir, "beta.twb", changedWorkbookXML)

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("second Discover() failed: %v", err)
	}
	if result.WorkbooksAnalyzed != 1 {
		t.Errorf("Expected 1 analyzed, got %d", result.WorkbooksAnalyzed)
	}
	if result.WorkbooksSkipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", result.WorkbooksSkipped)
	}

	rec, err := eng.store.GetWorkbook("beta")
	if err != nil {
		t.Fatalf("GetWorkbook() failed: %v", err)
	}
	if rec == nil || rec.FieldCount != 4 {
		t.Errorf("Expected re-analyzed beta with 4 fields, got %+v", rec)
	}
}

// TestDiscover_RemovesDeletedWorkbooks tests catalog cleanup for removed files.
func TestDiscover_RemovesDeletedWorkbooks(t *testing.T) {
	dir := t.TempDir()
	alphaPath := writeWorkbook(t, dir, "alpha.twb", testWorkbookXML)
	writeWorkbook(t, dir, "beta.twb", testWorkbookXML)
	eng := newTestEngine(t, dir)

	if _, err := eng.Discover(DiscoveryOptions{}); err != nil {
		t.Fatalf("first Discover() failed: %v", err)
	}

	if err := os.Remove(alphaPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("second Discover() failed: %v", err)
	}
	if result.WorkbooksDeleted != 1 {
		t.Errorf("Expected 1 deleted, got %d", result.WorkbooksDeleted)
	}

	rec, err := eng.store.GetWorkbook("alpha")
	if err != nil {
		t.Fatalf("GetWorkbook() failed: %v", err)
	}
	if rec != nil {
		t.Error("Expected alpha to be removed from the catalog")
	}

	hash, err := eng.store.GetContentHash(alphaPath)
	if err != nil {
		t.Fatalf("GetContentHash() failed: %v", err)
	}
	if hash != "" {
		t.Error("Expected alpha's content hash to be removed")
	}
}

// TestDiscover_RecordsOpenErrors tests graceful degradation on broken files.
func TestDiscover_RecordsOpenErrors(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "good.twb", testWorkbookXML)
	writeWorkbook(t, dir, "broken.twb", "<workbook><datasources>")
	eng := newTestEngine(t, dir)

	result, err := eng.Discover(DiscoveryOptions{})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if !result.HasErrors() {
		t.Fatal("Expected discovery errors for broken workbook")
	}
	if len(result.Errors) != 1 || result.Errors[0].Type != "open" {
		t.Errorf("Unexpected errors: %+v", result.Errors)
	}
	if result.WorkbooksAnalyzed != 1 {
		t.Errorf("Expected the good workbook to be analyzed, got %d", result.WorkbooksAnalyzed)
	}
}

// TestDiscover_NoWorkbooksDir tests the unconfigured-directory error.
func TestDiscover_NoWorkbooksDir(t *testing.T) {
	eng := newTestEngine(t, "")

	if _, err := eng.Discover(DiscoveryOptions{}); err == nil {
		t.Fatal("Expected error without a workbooks directory")
	}

	// The option override supplies the directory instead
	dir := t.TempDir()
	writeWorkbook(t, dir, "alpha.twb", testWorkbookXML)
	result, err := eng.Discover(DiscoveryOptions{WorkbooksDir: dir})
	if err != nil {
		t.Fatalf("Discover() with override failed: %v", err)
	}
	if result.WorkbooksAnalyzed != 1 {
		t.Errorf("Expected 1 analyzed, got %d", result.WorkbooksAnalyzed)
	}
}

// TestDiscoveryResult_Summary tests the human-readable summary string.
func TestDiscoveryResult_Summary(t *testing.T) {
	r := &DiscoveryResult{
		WorkbooksTotal:    3,
		WorkbooksAnalyzed: 2,
		WorkbooksSkipped:  1,
	}

	s := r.Summary()
	if !strings.Contains(s, "3 total") || !strings.Contains(s, "2 analyzed") || !strings.Contains(s, "1 skipped") {
		t.Errorf("Unexpected summary: %s", s)
	}
}
