// Package check provides the check command.
package check

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/cgvn/cmd/application"
	"github.com/agentstation/cgvn/internal/cmd/output"
)

// NewCommand creates the check command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every stage without writing and print the run report",
		Long: `Check runs the full pipeline against the configured inputs without
writing any output. It surfaces configuration, structural and label errors
and reports how many rows each join kept and dropped.`,
		Args: cobra.NoArgs,
		Example: `  cgvn check
  cgvn check --strict    # Fail when a governance row has no registry ticker`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			runner, err := app.Pipeline(ctx, false)
			if err != nil {
				return err
			}
			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if err := output.WriteReport(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}

			if strict && report.Reconcile.Unregistered > 0 {
				return fmt.Errorf("%d governance rows have no registry ticker", report.Reconcile.Unregistered)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any governance row is unregistered")

	return cmd
}
