package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	intconfig "github.com/fieldlens-labs/fieldlens/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Fieldlens project",
		Long: `Initialize a new Fieldlens project with a starter configuration and
directory layout.

This creates:
  - fieldlens.yaml configuration file
  - workbooks/ directory with a sample workbook
  - .gitignore covering catalog state and generated artifacts

Every configuration key can be overridden with FIELDLENS_* environment
variables or the global flags.`,
		Example: `  # Initialize in the current directory
  fieldlens init

  # Initialize in a new directory
  fieldlens init my-project

  # Overwrite an existing configuration
  fieldlens init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContextWithoutEngine(cmd).Renderer
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, intconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", intconfig.ConfigFileName)
	}

	if err := writeProjectConfig(configPath, projectNameFor(dir)); err != nil {
		return fmt.Errorf("failed to write %s: %w", intconfig.ConfigFileName, err)
	}

	files, err := applyTemplate("minimal", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	r.StatusLine(intconfig.ConfigFileName, "success", "")
	for _, f := range files {
		if f.Skipped {
			r.StatusLine(f.Path, "skipped", "already exists")
			continue
		}
		r.StatusLine(f.Path, "success", "")
	}

	r.Println("")
	r.Success("Fieldlens project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Drop your .twb/.twbx files into workbooks/")
	r.Println("  2. Run 'fieldlens discover' to build the catalog")
	r.Println("  3. Run 'fieldlens fields sample' to inspect a workbook")
	r.Println("  4. Run 'fieldlens docs serve' to browse the field catalog")

	return nil
}

// scaffoldConfig is the shape of the generated configuration file. It is
// kept separate from the runtime config so a fresh project only carries
// the keys worth editing.
type scaffoldConfig struct {
	ProjectName  string             `yaml:"project_name"`
	WorkbooksDir string             `yaml:"workbooks_dir"`
	StatePath    string             `yaml:"state_path"`
	Strategy     string             `yaml:"strategy"`
	Docs         scaffoldDocsConfig `yaml:"docs"`
}

type scaffoldDocsConfig struct {
	OutputDir string `yaml:"output_dir"`
	Port      int    `yaml:"port"`
}

func writeProjectConfig(path, projectName string) error {
	cfg := scaffoldConfig{
		ProjectName:  projectName,
		WorkbooksDir: intconfig.DefaultWorkbooksDir,
		StatePath:    intconfig.DefaultStatePath,
		Strategy:     intconfig.DefaultStrategy,
		Docs: scaffoldDocsConfig{
			OutputDir: intconfig.DefaultDocsOutputDir,
			Port:      intconfig.DefaultDocsPort,
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	header := "# Fieldlens project configuration.\n# Keys can be overridden with FIELDLENS_* environment variables.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0600)
}

// projectNameFor derives a project name from the target directory.
func projectNameFor(dir string) string {
	if dir == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return intconfig.DefaultProjectName
		}
		dir = cwd
	}
	if base := filepath.Base(dir); base != "." && base != string(filepath.Separator) {
		return base
	}
	return intconfig.DefaultProjectName
}
