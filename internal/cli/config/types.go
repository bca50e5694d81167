// Package config provides configuration management for the fieldlens CLI.
//
// This package extends the shared configuration types from
// internal/config with CLI-specific fields and functionality. The shared
// types (DocsConfig) are re-exported here via type aliases for
// convenience.
package config

import (
	sharedcfg "github.com/fieldlens-labs/fieldlens/internal/config"
)

// DocsConfig is an alias for the shared docs configuration.
// This allows CLI code to use config.DocsConfig without importing
// internal/config.
type DocsConfig = sharedcfg.DocsConfig

// Config holds all CLI configuration options.
type Config struct {
	WorkbooksDir string      `koanf:"workbooks_dir"`
	StatePath    string      `koanf:"state_path"`
	ProjectName  string      `koanf:"project_name"`
	Strategy     string      `koanf:"strategy"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"output"`
	Docs         *DocsConfig `koanf:"docs"`

	// ProjectRoot is the inferred project directory, never read from the
	// config file itself.
	ProjectRoot string `koanf:"-"`
}

// GetDocsConfig returns the docs config with defaults applied for any
// unset values.
func (c *Config) GetDocsConfig() *DocsConfig {
	docs := c.Docs
	if docs == nil {
		docs = &DocsConfig{}
	}
	sharedcfg.ApplyDocsDefaults(docs)
	return docs
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultWorkbooksDir = sharedcfg.DefaultWorkbooksDir
	DefaultStateFile    = sharedcfg.DefaultStatePath
	DefaultProjectName  = sharedcfg.DefaultProjectName
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
