// Package docs provides SQLite database export for documentation.
package docs

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// CopyCatalogDB copies the catalog database to the output path for docs.
// The catalog already holds every analyzed workbook, so the site ships a
// queryable copy, vacuumed so HTTP range requests hit contiguous pages.
func CopyCatalogDB(catalogPath, outputPath string) error {
	if err := CopyFile(catalogPath, outputPath); err != nil {
		return fmt.Errorf("failed to copy catalog database: %w", err)
	}

	// Open and VACUUM for optimization (better compression, contiguous pages)
	db, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("failed to open copied database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(context.Background(), "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}
