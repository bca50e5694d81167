package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/fieldlens-labs/fieldlens/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export <workbook>",
		Short: "Export a workbook's analysis as CSV and JSON files",
		Long: `Write the field catalog and dependency edges of a workbook to disk:
a fields CSV, an edges CSV, and a combined JSON document.

The workbook argument is either a path to a .twb/.twbx file or the name
of a workbook already analyzed into the catalog store.`,
		Example: `  # Export into ./exports
  fieldlens export superstore

  # Export a workbook file into a custom directory
  fieldlens export workbooks/superstore.twb --output ./artifacts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], outputDir)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "exports", "Directory to write artifacts into")

	return cmd
}

func runExport(cmd *cobra.Command, ref, outputDir string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer

	name, a, err := loadAnalysis(cmdCtx, ref)
	if err != nil {
		return err
	}

	files, err := export.Files(outputDir, name, a)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.ExportOutput{Workbook: name, Files: files})
	}

	for _, f := range files {
		r.StatusLine(filepath.Base(f), "success", "")
	}
	r.Println("")
	r.Success(fmt.Sprintf("Exported %q to %s", name, outputDir))

	return nil
}
