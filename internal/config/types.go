// Package config provides shared configuration types for fieldlens.
// This package is decoupled from CLI concerns and can be used by the
// docs server and other tools that need to load project configuration.
package config

import (
	"fmt"

	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
)

// DocsConfig holds documentation site configuration.
type DocsConfig struct {
	// OutputDir is where the static site is written.
	OutputDir string `koanf:"output_dir"`

	// Port is the dev server port.
	Port int `koanf:"port"`
}

// ProjectConfig holds the minimal project configuration needed by tools
// outside the CLI. This is a subset of the full CLI Config.
type ProjectConfig struct {
	WorkbooksDir string      `koanf:"workbooks_dir"`
	StatePath    string      `koanf:"state_path"`
	ProjectName  string      `koanf:"project_name"`
	Strategy     string      `koanf:"strategy"`
	Docs         *DocsConfig `koanf:"docs"`
}

// Validate checks if the project configuration is valid.
func (c *ProjectConfig) Validate() error {
	if c.Strategy != "" && !catalog.Strategy(c.Strategy).Valid() {
		return fmt.Errorf("unknown derivation strategy %q", c.Strategy)
	}
	return nil
}
