package config

import (
	"fmt"
	"os"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.WorkbooksDir == "" {
		return fmt.Errorf("workbooks_dir is required")
	}
	if c.Strategy != "" && !catalog.Strategy(c.Strategy).Valid() {
		return fmt.Errorf("unknown derivation strategy %q", c.Strategy)
	}

	// Directory existence is checked separately so help commands work
	// without a valid directory
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.WorkbooksDir); os.IsNotExist(err) {
		return fmt.Errorf("workbooks directory does not exist: %s\nHint: Create the directory or use --workbooks-dir to specify a different path", c.WorkbooksDir)
	}
	return nil
}
