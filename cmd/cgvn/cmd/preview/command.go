// Package preview provides the preview command.
package preview

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/cgvn/cmd/application"
	"github.com/agentstation/cgvn/internal/cmd/output"
)

// DefaultLimit is the number of rows shown unless --limit is given.
const DefaultLimit = 20

// NewCommand creates the preview command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Reconcile the inputs and print the output table",
		Args:  cobra.NoArgs,
		Example: `  cgvn preview                 # First 20 rows as a table
  cgvn preview --limit 0 -o json   # Every row as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d", limit)
			}
			ctx := cmd.Context()

			runner, err := app.Pipeline(ctx, false)
			if err != nil {
				return err
			}
			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			if report.Output == nil {
				return fmt.Errorf("run %s produced no output table", report.RunID)
			}
			out := report.Output
			if limit > 0 {
				out = out.Head(limit)
			}

			format := output.DetectFormat(app.OutputFormat())
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), out); err != nil {
				return err
			}

			if format == output.FormatTable && out.Len() < report.Output.Len() {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nshowing %d of %d rows\n", out.Len(), report.Output.Len())
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultLimit, "maximum rows to print (0 for all)")

	return cmd
}
