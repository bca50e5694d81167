package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	intconfig "github.com/fieldlens-labs/fieldlens/internal/config"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --project-dir flag
//  2. Infer from --workbooks-dir (parent if contains config or named "workbooks")
//  3. Search upward from CWD for fieldlens.yaml
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	if dir := flagValue(flags, "project-dir"); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return filepath.Clean(dir)
	}

	// The anchor pattern: --workbooks-dir data/workbooks implies the
	// project root is data/
	if dir := flagValue(flags, "workbooks-dir"); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			parent := filepath.Dir(abs)
			if intconfig.FindConfigFile(parent) != "" || filepath.Base(abs) == DefaultWorkbooksDir {
				return parent
			}
		}
	}

	cwd, _ := os.Getwd()
	if root := intconfig.FindProjectRoot(cwd); root != "" {
		return root
	}
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// flagValue returns the flag's value when it was explicitly set.
func flagValue(flags *pflag.FlagSet, name string) string {
	if flags == nil || !flags.Changed(name) {
		return ""
	}
	v, _ := flags.GetString(name)
	return v
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(flags)

	// Paths given as flags are relative to CWD, not the project root.
	// Absolutize them now so the resolution step below cannot re-anchor
	// them when the root was inferred from one of them.
	flagWorkbooksDir := absFlagPath(flags, "workbooks-dir")
	flagStatePath := absFlagPath(flags, "state")

	// An explicit config file anchors the project root at its directory
	// unless a more specific hint was given via flags
	if cfgFile != "" && projectRoot == inferProjectRoot(nil) {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"workbooks_dir":   DefaultWorkbooksDir,
		"state_path":      DefaultStateFile,
		"project_name":    DefaultProjectName,
		"strategy":        intconfig.DefaultStrategy,
		"verbose":         false,
		"output":          DefaultOutput,
		"docs.output_dir": intconfig.DefaultDocsOutputDir,
		"docs.port":       intconfig.DefaultDocsPort,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file, discovered in the project root when not explicit
	if cfgFile == "" {
		cfgFile = intconfig.FindConfigFile(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (FIELDLENS_ prefix)
	// Transform: FIELDLENS_WORKBOOKS_DIR -> workbooks_dir,
	// FIELDLENS_DOCS__PORT -> docs.port
	if err := k.Load(env.Provider("FIELDLENS_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "FIELDLENS_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: Bridge the gap between --state flag and
			// state_path config key. The CLI uses --state for brevity, the
			// config struct uses state_path for clarity.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. The project root is the base for all path resolution, not the
	// config file directory or CWD. Flag-given paths keep their CWD
	// anchoring computed above.
	cfg.ProjectRoot = projectRoot
	if flagWorkbooksDir != "" {
		cfg.WorkbooksDir = flagWorkbooksDir
	} else {
		cfg.WorkbooksDir = resolvePathRelativeTo(cfg.WorkbooksDir, projectRoot)
	}
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}
	if cfg.Docs != nil {
		cfg.Docs.OutputDir = resolvePathRelativeTo(cfg.Docs.OutputDir, projectRoot)
	}

	// Validate the derivation strategy early so every command fails the
	// same way on a bad value
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// absFlagPath absolutizes a path flag that was explicitly set.
func absFlagPath(flags *pflag.FlagSet, name string) string {
	v := flagValue(flags, name)
	if v == "" {
		return ""
	}
	abs, err := filepath.Abs(v)
	if err != nil {
		return v
	}
	return abs
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
