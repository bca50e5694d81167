package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fieldlens-labs/fieldlens/internal/docs"
	"github.com/fieldlens-labs/fieldlens/internal/engine"
	"github.com/spf13/cobra"
)

// NewDocsCommand creates the docs command with subcommands.
func NewDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate and serve the catalog documentation site",
		Long: `Generate the static documentation site or serve it locally.

The site includes the field catalog, formulas, dependency lineage, and
per-workbook markdown and Graphviz exports.`,
	}

	cmd.AddCommand(newDocsBuildCommand())
	cmd.AddCommand(newDocsServeCommand())

	return cmd
}

func newDocsBuildCommand() *cobra.Command {
	var outputPath string
	var projectName string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the static documentation site",
		Long:  `Scan workbooks, then generate a static HTML site for the field catalog.`,
		Example: `  # Build docs with defaults
  fieldlens docs build

  # Build to a custom directory
  fieldlens docs build --output ./public

  # Build with a custom project name
  fieldlens docs build --project "Acme Analytics"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocsBuild(cmd, outputPath, projectName)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Output directory (default: docs.output_dir from config)")
	cmd.Flags().StringVar(&projectName, "project", "", "Project name for the site (default: project_name from config)")

	return cmd
}

func newDocsServeCommand() *cobra.Command {
	var projectName string
	var outputPath string
	var port int
	var static bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the documentation site locally",
		Long: `Serve the documentation on a local HTTP server.

By default this is a development server: workbook changes are picked up
automatically and connected browsers reload. With --static, the site is
built once and served from disk.`,
		Example: `  # Dev server with live reload
  fieldlens docs serve

  # Serve on a custom port
  fieldlens docs serve --port 3000

  # Build once and serve the static site
  fieldlens docs serve --static`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocsServe(cmd, outputPath, projectName, port, static)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Site directory for --static (default: docs.output_dir from config)")
	cmd.Flags().StringVar(&projectName, "project", "", "Project name for the site (default: project_name from config)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to serve on (default: docs.port from config)")
	cmd.Flags().BoolVar(&static, "static", false, "Build once and serve the generated files without watching")

	return cmd
}

func runDocsBuild(cmd *cobra.Command, outputPath, projectName string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	docsCfg := cfg.GetDocsConfig()
	if outputPath == "" {
		outputPath = docsCfg.OutputDir
	}
	if projectName == "" {
		projectName = cfg.ProjectName
	}

	if _, err := os.Stat(cfg.WorkbooksDir); os.IsNotExist(err) {
		return fmt.Errorf("workbooks directory does not exist: %s", cfg.WorkbooksDir)
	}

	r.Println("Building documentation...")
	r.Printf("  Workbooks: %s\n", cfg.WorkbooksDir)
	r.Printf("  Output:    %s\n", outputPath)
	r.Printf("  Project:   %s\n", projectName)
	r.Println("")

	if _, err := cmdCtx.Engine.Discover(engine.DiscoveryOptions{}); err != nil {
		return fmt.Errorf("failed to discover workbooks: %w", err)
	}

	gen := docs.NewGenerator(cmdCtx.Engine.Store(), projectName)
	if err := gen.Build(outputPath); err != nil {
		return fmt.Errorf("failed to build docs: %w", err)
	}

	// Ship the catalog database alongside the site for downstream tooling
	dbPath := filepath.Join(outputPath, "data", "catalog.db")
	if err := docs.CopyCatalogDB(cfg.StatePath, dbPath); err != nil {
		return fmt.Errorf("failed to copy catalog database: %w", err)
	}

	r.Success("Documentation generated!")
	r.Printf("Open %s in your browser, or run 'fieldlens docs serve'\n", filepath.Join(outputPath, "index.html"))

	return nil
}

func runDocsServe(cmd *cobra.Command, outputPath, projectName string, port int, static bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg

	docsCfg := cfg.GetDocsConfig()
	if outputPath == "" {
		outputPath = docsCfg.OutputDir
	}
	if projectName == "" {
		projectName = cfg.ProjectName
	}
	if port == 0 {
		port = docsCfg.Port
	}

	if _, err := os.Stat(cfg.WorkbooksDir); os.IsNotExist(err) {
		return fmt.Errorf("workbooks directory does not exist: %s", cfg.WorkbooksDir)
	}

	if static {
		if _, err := cmdCtx.Engine.Discover(engine.DiscoveryOptions{}); err != nil {
			return fmt.Errorf("failed to discover workbooks: %w", err)
		}
		gen := docs.NewGenerator(cmdCtx.Engine.Store(), projectName)
		if err := gen.Build(outputPath); err != nil {
			return fmt.Errorf("failed to build docs: %w", err)
		}
		return docs.ServeFromFS(outputPath, port)
	}

	return docs.ServeDev(docs.DevConfig{
		Engine:       cmdCtx.Engine,
		ProjectName:  projectName,
		WorkbooksDir: cfg.WorkbooksDir,
		Port:         port,
		Logger:       cmdCtx.Logger,
	})
}
