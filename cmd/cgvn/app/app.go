// Package app provides the application context and dependency management
// for the cgvn CLI. It centralizes configuration, logging and the
// lifecycle of the pipeline's sources and sinks.
package app

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/cmd/application"
	"github.com/agentstation/cgvn/internal/config"
	"github.com/agentstation/cgvn/internal/sources/files"
	"github.com/agentstation/cgvn/internal/sources/postgres"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/pipeline"
	"github.com/agentstation/cgvn/pkg/sources"
)

// App represents the cgvn application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Resources opened for pipelines, released by Shutdown
	mu      sync.Mutex
	closers []func()
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		if cfg == nil || cfg.Pipeline == nil {
			return errors.NewConfigError("app", "configuration cannot be nil", nil)
		}
		a.config = cfg
		return nil
	}
}

// WithLogger replaces the configured logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations unless WithConfig
// is given.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		cfg, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		app.config = cfg
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// PipelineConfig returns the pipeline configuration.
func (a *App) PipelineConfig() *config.Pipeline {
	return a.config.Pipeline
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Pipeline builds a pipeline from the configuration: every input table is
// read from its configured file, and when write is set the output goes to
// the configured file and, if a dsn is set, to PostgreSQL.
func (a *App) Pipeline(ctx context.Context, write bool) (application.Runner, error) {
	cfg := a.config.Pipeline

	fileOpts := []files.Option{files.WithBaseDir(cfg.BaseDir), files.WithLogger(a.logger)}
	for _, name := range sources.Inputs {
		fileOpts = append(fileOpts, files.WithDataset(name, fileDataset(cfg.Dataset(name))))
	}
	if write && cfg.Output.Path != "" {
		fileOpts = append(fileOpts, files.WithDataset(sources.Output, fileDataset(cfg.Dataset(sources.Output))))
	}
	store, err := files.New(fileOpts...)
	if err != nil {
		return nil, err
	}

	router := sources.NewRouter()
	for _, name := range sources.Inputs {
		router.Set(name, store)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(a.logger),
		pipeline.WithSentinels(cfg.Sentinels...),
	}
	for _, name := range sources.Inputs {
		opts = append(opts, pipeline.WithMapping(name, cfg.Dataset(name).Mapping(name)))
	}

	if write {
		var sinks sources.Sinks
		if cfg.Output.Path != "" {
			sinks = append(sinks, store)
		}
		if cfg.Output.Postgres.Enabled() {
			pgOpts := []postgres.Option{postgres.WithLogger(a.logger)}
			if cfg.Output.Postgres.Table != "" {
				pgOpts = append(pgOpts, postgres.WithTable(sources.Output, cfg.Output.Postgres.Table))
			}
			sink, err := postgres.New(ctx, cfg.Output.Postgres.DSN, pgOpts...)
			if err != nil {
				return nil, err
			}
			a.onShutdown(sink.Close)
			sinks = append(sinks, sink)
		}
		opts = append(opts, pipeline.WithSink(sinks))
	}

	p, err := pipeline.New(router, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func fileDataset(ds config.Dataset) files.Dataset {
	return files.Dataset{
		Path:      ds.Path,
		Sheet:     ds.Sheet,
		HeaderRow: ds.HeaderRow,
		RawValues: ds.RawValues,
	}
}

func (a *App) onShutdown(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Shutdown releases resources opened by pipelines, most recent first.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return stderrors.Join(errors.New("shutdown interrupted"), err)
		}
		closers[i]()
	}
	return nil
}
