package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fieldlens-labs/fieldlens/internal/cli/config"
	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	intconfig "github.com/fieldlens-labs/fieldlens/internal/config"
	"github.com/fieldlens-labs/fieldlens/internal/engine"
	"github.com/fieldlens-labs/fieldlens/pkg/catalog"
	"github.com/spf13/cobra"
)

// CommandContext bundles the dependencies every command needs: the
// resolved config, logger, engine and renderer.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open engine.
// The returned cleanup function must be called, typically via defer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	return cmdCtx, func() { _ = eng.Close() }, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need catalog access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// the nearest project file and environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	pc := loadProjectConfig()

	return &config.Config{
		WorkbooksDir: getEnvOrDefault("FIELDLENS_WORKBOOKS_DIR", pc.WorkbooksDir),
		StatePath:    getEnvOrDefault("FIELDLENS_STATE_PATH", pc.StatePath),
		ProjectName:  getEnvOrDefault("FIELDLENS_PROJECT_NAME", pc.ProjectName),
		Strategy:     getEnvOrDefault("FIELDLENS_STRATEGY", pc.Strategy),
		Verbose:      os.Getenv("FIELDLENS_VERBOSE") == "true",
		OutputFormat: os.Getenv("FIELDLENS_OUTPUT"),
	}
}

// loadProjectConfig reads the project file nearest to the working
// directory, falling back to defaults when none is found or readable.
func loadProjectConfig() *intconfig.ProjectConfig {
	if cwd, err := os.Getwd(); err == nil {
		if root := intconfig.FindProjectRoot(cwd); root != "" {
			if pc, err := intconfig.LoadFromDir(root); err == nil && pc != nil {
				return pc
			}
		}
	}

	pc := &intconfig.ProjectConfig{}
	intconfig.ApplyDefaults(pc)
	return pc
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	engineCfg := engine.Config{
		WorkbooksDir: cfg.WorkbooksDir,
		StatePath:    cfg.StatePath,
		Strategy:     catalog.Strategy(cfg.Strategy),
		Logger:       logger,
	}

	return engine.New(engineCfg)
}

// loadAnalysis resolves a workbook reference to its analysis. A path to an
// existing workbook file is analyzed directly; anything else is looked up in
// the catalog store by name.
func loadAnalysis(cmdCtx *CommandContext, ref string) (string, *catalog.Analysis, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		wb, a, err := cmdCtx.Engine.AnalyzeFile(ref)
		if err != nil {
			return "", nil, err
		}
		return wb.Name, a, nil
	}

	store := cmdCtx.Engine.Store()
	rec, err := store.GetWorkbook(ref)
	if err != nil {
		return "", nil, err
	}
	if rec == nil {
		return "", nil, fmt.Errorf("workbook not found: %s (not a file, and not in the catalog; run 'fieldlens discover' first)", ref)
	}

	fields, err := store.ListFields(rec.ID)
	if err != nil {
		return "", nil, err
	}
	edges, err := store.ListEdges(rec.ID)
	if err != nil {
		return "", nil, err
	}

	a := &catalog.Analysis{Fields: fields, Relationships: edges, Strategy: rec.Strategy}
	for _, f := range fields {
		if f.IsCalc() {
			a.Calcs = append(a.Calcs, f)
		}
	}
	return rec.Name, a, nil
}
