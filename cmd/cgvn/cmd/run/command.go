// Package run provides the run command.
package run

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cgvn/cmd/application"
	"github.com/agentstation/cgvn/internal/cmd/output"
)

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Reconcile the inputs and write the output table",
		Long: `Run reads the registry, governance and equity tables, reconciles them
and writes the final table to every configured output. Nothing is written
when any stage fails.`,
		Args: cobra.NoArgs,
		Example: `  cgvn run                          # Use ./.cgvn.yaml
  cgvn run --config prod.yaml -o json
  CGVN_OUTPUT_PATH=out/dados.csv cgvn run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			runner, err := app.Pipeline(ctx, true)
			if err != nil {
				return err
			}
			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.WriteReport(cmd.OutOrStdout(), format, report)
		},
	}
}
