package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "fieldlens.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "fieldlens.yml"

// configFileNames lists accepted config file names in priority order.
var configFileNames = []string{ConfigFileName, ConfigFileNameAlt}

// FindConfigFile returns the path of the config file in dir, or ""
// when dir has none.
func FindConfigFile(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir looking for a directory that
// contains a config file. Returns "" when the walk reaches the
// filesystem root without finding one.
func FindProjectRoot(startDir string) string {
	for dir := startDir; ; {
		if FindConfigFile(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadFromDir loads a ProjectConfig from dir's fieldlens.yaml or
// fieldlens.yml. A missing file is not an error; it returns nil, nil
// so callers can fall back to defaults.
func LoadFromDir(dir string) (*ProjectConfig, error) {
	path := FindConfigFile(dir)
	if path == "" {
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}
