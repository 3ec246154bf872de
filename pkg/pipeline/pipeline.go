// Package pipeline orchestrates one reconciliation run: it reads the three
// input tables from a TableSource, maps them to their canonical schemas,
// prepares each one independently, aggregates equity to annual figures,
// reconciles everything into the final table and writes it to a TableSink.
//
// Example usage:
//
//	p, err := pipeline.New(source,
//		pipeline.WithSink(sink),
//		pipeline.WithSentinels("----", "-"),
//	)
//	if err != nil {
//		return err
//	}
//	report, err := p.Run(ctx)
package pipeline

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/logging"
	"github.com/agentstation/cgvn/pkg/reconcile"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
	"github.com/agentstation/cgvn/pkg/temporal"
)

// Pipeline runs the reconciliation stages in order.
type Pipeline struct {
	source     sources.TableSource
	sink       sources.TableSink
	mappings   map[sources.Name]sources.Mapping
	sentinels  temporal.Sentinels
	reconciler reconcile.Reconciler
	logger     *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithSink sets where the final table is written. Without a sink, Run
// stops after reconciliation.
func WithSink(sink sources.TableSink) Option {
	return func(p *Pipeline) error {
		p.sink = sink
		return nil
	}
}

// WithMapping overrides the column mapping of an input table.
func WithMapping(name sources.Name, m sources.Mapping) Option {
	return func(p *Pipeline) error {
		schema, ok := sources.SchemaFor(name)
		if !ok {
			return errors.NewConfigError("pipeline", "no column mapping applies to "+name.String(), nil)
		}
		if err := m.Validate(schema); err != nil {
			return err
		}
		p.mappings[name] = m
		return nil
	}
}

// WithSentinels sets the missing-value markers of the equity table.
func WithSentinels(markers ...string) Option {
	return func(p *Pipeline) error {
		p.sentinels = temporal.NewSentinels(markers...)
		return nil
	}
}

// WithReconciler replaces the default reconciler.
func WithReconciler(r reconcile.Reconciler) Option {
	return func(p *Pipeline) error {
		if r == nil {
			return errors.New("reconciler cannot be nil")
		}
		p.reconciler = r
		return nil
	}
}

// WithLogger sets the logger. Run also honors a logger carried by its
// context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// New creates a pipeline reading from source.
func New(source sources.TableSource, opts ...Option) (*Pipeline, error) {
	if source == nil {
		return nil, errors.NewConfigError("pipeline", "no table source", nil)
	}
	p := &Pipeline{
		source:    source,
		mappings:  make(map[sources.Name]sources.Mapping),
		sentinels: temporal.DefaultSentinels(),
		logger:    logging.Default(),
	}
	for _, name := range sources.Inputs {
		p.mappings[name] = sources.DefaultMapping(name)
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.reconciler == nil {
		r, err := reconcile.New(reconcile.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.reconciler = r
	}
	return p, nil
}

// Stage names recorded in a Report.
const (
	StageRead      = "read"
	StagePrepare   = "prepare"
	StageAggregate = "aggregate"
	StageReconcile = "reconcile"
	StageWrite     = "write"
)

// StageReport records one stage of a run.
type StageReport struct {
	Stage    string        `json:"stage" yaml:"stage"`
	Table    string        `json:"table,omitempty" yaml:"table,omitempty"`
	RowsIn   int           `json:"rows_in" yaml:"rows_in"`
	RowsOut  int           `json:"rows_out" yaml:"rows_out"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report describes a completed run.
type Report struct {
	RunID     uuid.UUID            `json:"run_id" yaml:"run_id"`
	StartedAt utc.Time             `json:"started_at" yaml:"started_at"`
	Duration  time.Duration        `json:"duration" yaml:"duration"`
	Stages    []StageReport        `json:"stages" yaml:"stages"`
	Reconcile reconcile.Statistics `json:"reconcile" yaml:"reconcile"`
	Written   bool                 `json:"written" yaml:"written"`

	// IdentifierCollisions counts governance (identifier, period) pairs
	// whose identifier appears in several spellings
	IdentifierCollisions int `json:"identifier_collisions" yaml:"identifier_collisions"`

	// Output is the final table
	Output *table.Table `json:"-" yaml:"-"`
}

// inputs holds the prepared inputs of the reconciler.
type inputs struct {
	registry   []reconcile.RegistryRecord
	governance reconcile.Governance
	equity     []reconcile.AnnualEquity
}

// Run executes every stage. Any error aborts the run; nothing is written
// unless all earlier stages succeeded.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.New(), StartedAt: utc.Now()}
	start := time.Now()

	ctx = logging.WithLogger(ctx, p.contextLogger(ctx))
	ctx = logging.WithRunID(ctx, report.RunID.String())
	logger := logging.FromContext(ctx)
	logger.Info().Msg("Starting reconciliation run")

	in, err := p.prepare(ctx, report)
	if err != nil {
		logger.Error().Err(err).Msg("Run failed")
		return nil, err
	}

	stageStart := time.Now()
	result, err := p.reconciler.Reconcile(in.governance, in.registry, in.equity)
	if err != nil {
		logger.Error().Err(err).Str("stage", StageReconcile).Msg("Run failed")
		return nil, err
	}
	out, err := result.Table()
	if err != nil {
		return nil, err
	}
	report.Reconcile = result.Statistics
	report.Output = out
	report.record(StageReconcile, "", len(in.governance.Rows), out.Len(), stageStart)

	stats := result.Statistics
	logger.Info().
		Int("unregistered", stats.Unregistered).
		Int("unused_registry", stats.UnusedRegistry).
		Int("missing_equity", stats.MissingEquity).
		Msg("Unmatched rows")

	if p.sink != nil {
		stageStart = time.Now()
		if err := p.sink.Write(ctx, out, sources.Output); err != nil {
			logger.Error().Err(err).Str("stage", StageWrite).Msg("Run failed")
			return nil, err
		}
		report.Written = true
		report.record(StageWrite, sources.Output.String(), out.Len(), out.Len(), stageStart)
	}

	report.Duration = time.Since(start)
	logger.Info().
		Int("rows", out.Len()).
		Dur("duration", report.Duration).
		Msg(result.Summary())
	return report, nil
}

func (p *Pipeline) contextLogger(ctx context.Context) *zerolog.Logger {
	if l := logging.FromContext(ctx); l != logging.Default() {
		return l
	}
	return p.logger
}

func (p *Pipeline) prepare(ctx context.Context, report *Report) (inputs, error) {
	var in inputs

	raw := make(map[sources.Name]*table.Table, len(sources.Inputs))
	for _, name := range sources.Inputs {
		stageStart := time.Now()
		t, err := p.read(ctx, name)
		if err != nil {
			return in, err
		}
		raw[name] = t
		report.record(StageRead, name.String(), t.Len(), t.Len(), stageStart)
	}

	stageStart := time.Now()
	registry, err := PrepareRegistry(raw[sources.Registry])
	if err != nil {
		return in, err
	}
	in.registry = registry
	report.record(StagePrepare, sources.Registry.String(), raw[sources.Registry].Len(), len(registry), stageStart)

	stageStart = time.Now()
	governance, err := PrepareGovernance(raw[sources.Governance])
	if err != nil {
		if errors.IsStructuralConflict(err) {
			logging.FromContext(ctx).Error().Err(err).Str("table", sources.Governance.String()).Msg("Duplicate pivot key")
		}
		return in, err
	}
	in.governance = governance
	collisions := IdentifierCollisions(raw[sources.Governance])
	for _, c := range collisions {
		logging.FromContext(ctx).Warn().
			Str("table", sources.Governance.String()).
			Str("identifier", c.Identifier).
			Str("period", c.Period).
			Strs("spellings", c.Spellings).
			Msg("Identifier spelled several ways for one period, rows will repeat")
	}
	report.IdentifierCollisions = len(collisions)
	report.record(StagePrepare, sources.Governance.String(), raw[sources.Governance].Len(), len(governance.Rows), stageStart)

	stageStart = time.Now()
	observations, err := PrepareEquity(raw[sources.Equity], p.sentinels)
	if err != nil {
		return in, err
	}
	report.record(StagePrepare, sources.Equity.String(), raw[sources.Equity].Len(), len(observations), stageStart)

	stageStart = time.Now()
	in.equity = temporal.Aggregate(observations)
	report.record(StageAggregate, sources.Equity.String(), len(observations), len(in.equity), stageStart)

	return in, nil
}

// read fetches one input table and applies its column mapping.
func (p *Pipeline) read(ctx context.Context, name sources.Name) (*table.Table, error) {
	logger := logging.FromContext(logging.WithTable(ctx, name.String()))

	t, err := p.source.Read(ctx, name)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read table")
		return nil, err
	}
	schema, _ := sources.SchemaFor(name)
	mapped, err := p.mappings[name].Apply(t, schema)
	if err != nil {
		logger.Error().Err(err).Msg("Column mapping failed")
		return nil, err
	}
	logger.Debug().Int("rows", mapped.Len()).Int("columns", mapped.Width()).Msg("Read table")
	return mapped, nil
}

func (r *Report) record(stage, tbl string, in, out int, start time.Time) {
	r.Stages = append(r.Stages, StageReport{
		Stage:    stage,
		Table:    tbl,
		RowsIn:   in,
		RowsOut:  out,
		Duration: time.Since(start),
	})
}
