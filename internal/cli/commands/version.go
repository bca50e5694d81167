package commands

import (
	"github.com/fieldlens-labs/fieldlens/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display Fieldlens version and build information.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContextWithoutEngine(cmd).Renderer

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(output.VersionOutput{
					Version:   version,
					Commit:    commit,
					BuildDate: date,
				})
			}

			r.Printf("Fieldlens v%s\n", version)
			r.Printf("Commit %s, built %s\n", commit, date)
			r.Println("Field catalog and dependency graphs for Tableau workbooks")
			return nil
		},
	}
}
