package config

import "github.com/fieldlens-labs/fieldlens/pkg/catalog"

// Default configuration values.
const (
	DefaultWorkbooksDir  = "workbooks"
	DefaultStatePath     = ".fieldlens/catalog.db"
	DefaultProjectName   = "Fieldlens Project"
	DefaultDocsOutputDir = "docs-site"
	DefaultDocsPort      = 8080
)

// DefaultStrategy is the edge derivation used when none is configured.
var DefaultStrategy = string(catalog.StrategyTokenScan)

// ApplyDefaults applies default values to a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.WorkbooksDir == "" {
		c.WorkbooksDir = DefaultWorkbooksDir
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStatePath
	}
	if c.ProjectName == "" {
		c.ProjectName = DefaultProjectName
	}
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.Docs != nil {
		ApplyDocsDefaults(c.Docs)
	}
}

// ApplyDocsDefaults applies default values to a DocsConfig.
func ApplyDocsDefaults(cfg *DocsConfig) {
	if cfg == nil {
		return
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultDocsOutputDir
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultDocsPort
	}
}
