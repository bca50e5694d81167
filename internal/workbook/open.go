package workbook

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoWorkbookEntry is returned when a .twbx archive contains no .twb
// document.
var ErrNoWorkbookEntry = errors.New("no workbook entry in archive")

// Workbook is a loaded workbook document.
type Workbook struct {
	// Path is the file the workbook was loaded from.
	Path string
	// Name is the base file name without extension.
	Name string
	// Root is the decoded document tree.
	Root *Element
	// Version is the workbook's source-build or version attribute,
	// "" when the document carries neither.
	Version string
}

// Open loads a workbook from path. Plain .twb files are decoded directly;
// .twbx archives are unpacked in memory and the packaged .twb entry is
// decoded. Any other extension is an error.
func Open(path string) (*Workbook, error) {
	var root *Element
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".twb":
		root, err = decodeFile(path)
	case ".twbx":
		root, err = decodeArchive(path)
	default:
		return nil, fmt.Errorf("open %s: unsupported extension %q (want .twb or .twbx)", path, ext)
	}
	if err != nil {
		return nil, err
	}

	version := root.Attr("source-build")
	if version == "" {
		version = root.Attr("version")
	}

	base := filepath.Base(path)
	return &Workbook{
		Path:    path,
		Name:    strings.TrimSuffix(base, filepath.Ext(base)),
		Root:    root,
		Version: version,
	}, nil
}

func decodeFile(path string) (*Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	root, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return root, nil
}

func decodeArchive(path string) (*Element, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	entry := findWorkbookEntry(&zr.Reader)
	if entry == nil {
		return nil, fmt.Errorf("open archive %s: %w", path, ErrNoWorkbookEntry)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	root, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s!%s: %w", path, entry.Name, err)
	}
	return root, nil
}

// findWorkbookEntry picks the .twb entry to decode. Packaged workbooks
// keep the document at the archive root; a nested entry is used only when
// no top-level one exists.
func findWorkbookEntry(zr *zip.Reader) *zip.File {
	var nested *zip.File
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".twb") {
			continue
		}
		if !strings.ContainsRune(f.Name, '/') {
			return f
		}
		if nested == nil {
			nested = f
		}
	}
	return nested
}
