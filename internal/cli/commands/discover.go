package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/fieldlens-labs/fieldlens/internal/engine"
	"github.com/spf13/cobra"
)

// DiscoverOptions holds options for the discover command.
type DiscoverOptions struct {
	Force        bool
	WorkbooksDir string
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	opts := &DiscoverOptions{}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan workbooks into the catalog store",
		Long: `Scan the workbooks directory and analyze every .twb/.twbx file into the
SQLite catalog store.

Unchanged files are skipped based on their content hash; entries whose
files no longer exist are removed. Use --force to re-analyze everything.

Output adapts to environment:
  - Terminal: Styled summary with success indicator
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Incremental scan
  fieldlens discover

  # Re-analyze everything
  fieldlens discover --force

  # Scan a different directory
  fieldlens discover --workbooks-dir ./archive

  # Output as JSON
  fieldlens discover --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-analyze all workbooks, ignoring content hashes")
	cmd.Flags().StringVar(&opts.WorkbooksDir, "workbooks-dir", "", "Directory to scan (defaults to the configured one)")

	return cmd
}

func runDiscover(cmd *cobra.Command, opts *DiscoverOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer

	result, err := cmdCtx.Engine.Discover(engine.DiscoveryOptions{
		ForceFullRefresh: opts.Force,
		WorkbooksDir:     opts.WorkbooksDir,
	})
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return discoverJSON(r, result, cmdCtx.Cfg.StatePath)
	case output.ModeMarkdown:
		return discoverMarkdown(r, result, cmdCtx.Cfg.StatePath)
	default:
		return discoverText(r, result, cmdCtx.Cfg.StatePath)
	}
}

// discoverText outputs discovery results in styled text format.
func discoverText(r *output.Renderer, result *engine.DiscoveryResult, statePath string) error {
	r.Success(result.Summary())
	r.Muted(fmt.Sprintf("Catalog saved to %s", statePath))

	if result.HasErrors() {
		r.Println("")
		r.Header(2, fmt.Sprintf("Errors (%d)", len(result.Errors)))
		for _, e := range result.Errors {
			r.StatusLine(filepath.Base(e.Path), "failed", e.Message)
		}
	}

	return nil
}

// discoverMarkdown outputs discovery results in markdown format.
func discoverMarkdown(r *output.Renderer, result *engine.DiscoveryResult, statePath string) error {
	r.Println(output.FormatHeader(1, "Discovery Results"))
	r.Println("")
	r.Println(output.FormatKeyValue("Total Workbooks", fmt.Sprintf("%d", result.WorkbooksTotal)))
	r.Println(output.FormatKeyValue("Analyzed", fmt.Sprintf("%d", result.WorkbooksAnalyzed)))
	r.Println(output.FormatKeyValue("Skipped", fmt.Sprintf("%d", result.WorkbooksSkipped)))
	r.Println(output.FormatKeyValue("Deleted", fmt.Sprintf("%d", result.WorkbooksDeleted)))
	r.Println(output.FormatKeyValue("Duration", result.Duration.String()))
	r.Println(output.FormatKeyValue("State Path", statePath))

	if result.HasErrors() {
		r.Println("")
		r.Println(output.FormatHeader(2, "Errors"))
		for _, e := range result.Errors {
			r.Printf("- %s (%s): %s\n", e.Path, e.Type, e.Message)
		}
	}

	return nil
}

// discoverJSON outputs discovery results in JSON format.
func discoverJSON(r *output.Renderer, result *engine.DiscoveryResult, statePath string) error {
	doc := output.DiscoverOutput{
		Total:      result.WorkbooksTotal,
		Analyzed:   result.WorkbooksAnalyzed,
		Skipped:    result.WorkbooksSkipped,
		Deleted:    result.WorkbooksDeleted,
		DurationMS: result.Duration.Milliseconds(),
		StatePath:  statePath,
	}
	for _, e := range result.Errors {
		doc.Errors = append(doc.Errors, output.DiscoverError{
			Path:    e.Path,
			Type:    e.Type,
			Message: e.Message,
		})
	}

	return r.JSON(doc)
}
