// Package application provides test doubles for the command application
// interface.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/cmd/application"
	"github.com/agentstation/cgvn/internal/config"
	"github.com/agentstation/cgvn/pkg/pipeline"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    PipelineFunc: func(ctx context.Context, write bool) (application.Runner, error) {
//	        return application.RunnerFunc(func(context.Context) (*pipeline.Report, error) {
//	            return report, nil
//	        }), nil
//	    },
//	}
//	cmd := run.NewCommand(mock)
type Mock struct {
	PipelineFunc       func(ctx context.Context, write bool) (application.Runner, error)
	PipelineConfigFunc func() *config.Pipeline
	LoggerFunc         func() *zerolog.Logger
	OutputFormatFunc   func() string
	VersionFunc        func() string
	CommitFunc         func() string
	DateFunc           func() string
	BuiltByFunc        func() string
}

var _ application.Application = (*Mock)(nil)

// RunnerFunc adapts a function to application.Runner.
type RunnerFunc func(ctx context.Context) (*pipeline.Report, error)

// Run implements application.Runner.
func (f RunnerFunc) Run(ctx context.Context) (*pipeline.Report, error) {
	return f(ctx)
}

// Pipeline returns a runner using the mock function or a runner that
// returns an empty report.
func (m *Mock) Pipeline(ctx context.Context, write bool) (application.Runner, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(ctx, write)
	}
	return RunnerFunc(func(context.Context) (*pipeline.Report, error) {
		return &pipeline.Report{}, nil
	}), nil
}

// PipelineConfig returns the configuration using the mock function or an
// empty configuration.
func (m *Mock) PipelineConfig() *config.Pipeline {
	if m.PipelineConfigFunc != nil {
		return m.PipelineConfigFunc()
	}
	return &config.Pipeline{}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
