// Package application provides the application interface for cgvn commands.
//
// The Application interface defines the contract between the application
// layer and command implementations, so commands can be tested against a
// mock instead of real files and databases.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            runner, err := app.Pipeline(cmd.Context(), true)
//	            if err != nil {
//	                return err
//	            }
//	            _, err = runner.Run(cmd.Context())
//	            return err
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/internal/config"
	"github.com/agentstation/cgvn/pkg/pipeline"
)

// Runner executes one reconciliation run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Application provides what commands need from the app.
// The App struct from cmd/cgvn/app implements this interface.
type Application interface {
	// Pipeline builds a runner from the loaded configuration. When write
	// is false the runner reconciles without writing any output.
	Pipeline(ctx context.Context, write bool) (Runner, error)

	// PipelineConfig returns the loaded pipeline configuration.
	PipelineConfig() *config.Pipeline

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
