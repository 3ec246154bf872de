// Package postgres provides a TableSink that loads tables into PostgreSQL.
// Each write replaces the target table: it is dropped, recreated with
// column types inferred from the data, and bulk-loaded with COPY, all in
// one transaction.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/logging"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
)

// DB is the subset of *pgxpool.Pool the sink needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Sink writes tables to PostgreSQL.
type Sink struct {
	db     DB
	pool   *pgxpool.Pool // set when the sink owns its pool
	tables map[sources.Name]string
	logger *zerolog.Logger
}

// Option configures a Sink.
type Option func(*Sink) error

// WithTable sets the target table for a logical name. Unmapped names are
// written to a table of the same name.
func WithTable(name sources.Name, target string) Option {
	return func(s *Sink) error {
		if strings.TrimSpace(target) == "" {
			return errors.NewConfigError("postgres", "empty table name for "+name.String(), nil)
		}
		s.tables[name] = target
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Sink) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// New connects to dsn and returns a sink that owns the pool.
func New(ctx context.Context, dsn string, opts ...Option) (*Sink, error) {
	if dsn == "" {
		return nil, errors.NewConfigError("postgres", "dsn not set", nil)
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.NewConfigError("postgres", "failed to parse database config", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.WrapIO("connect", config.ConnConfig.Host, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapIO("connect", config.ConnConfig.Host, err)
	}

	s, err := NewWithDB(pool, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// NewWithDB returns a sink over an existing connection. The caller keeps
// ownership of db.
func NewWithDB(db DB, opts ...Option) (*Sink, error) {
	s := &Sink{
		db:     db,
		tables: make(map[sources.Name]string),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases the pool if the sink owns one.
func (s *Sink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Target returns the table a logical name is written to.
func (s *Sink) Target(name sources.Name) string {
	if t, ok := s.tables[name]; ok {
		return t
	}
	return name.String()
}

// Write implements sources.TableSink.
func (s *Sink) Write(ctx context.Context, t *table.Table, name sources.Name) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	target := s.Target(name)
	types := ColumnTypes(t)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.WrapIO("begin", target, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, DropTableSQL(target)); err != nil {
		return errors.WrapIO("drop", target, err)
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(target, t.Columns(), types)); err != nil {
		return errors.WrapIO("create", target, err)
	}

	rows := make([][]any, t.Len())
	for i := range rows {
		rows[i] = copyRow(t.Row(i), types)
	}
	n, err := tx.CopyFrom(ctx, identifier(target), t.Columns(), pgx.CopyFromRows(rows))
	if err != nil {
		return errors.WrapIO("copy", target, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.WrapIO("commit", target, err)
	}

	s.logger.Info().
		Str("table", name.String()).
		Str("target", target).
		Int64("rows", n).
		Msg("Loaded table into postgres")
	return nil
}

// Column types used for created tables.
const (
	TypeText   = "text"
	TypeBigint = "bigint"
	TypeDouble = "double precision"
)

// ColumnTypes infers one SQL type per column: bigint when every present
// value is an integer, double precision when every present value is
// numeric, text otherwise. All-missing columns are text.
func ColumnTypes(t *table.Table) []string {
	types := make([]string, t.Width())
	for j, col := range t.Columns() {
		values, _ := t.Column(col)
		types[j] = inferType(values)
	}
	return types
}

func inferType(values []any) string {
	kind := ""
	for _, v := range values {
		var k string
		switch x := v.(type) {
		case nil:
			continue
		case *float64:
			if x == nil {
				continue
			}
			k = TypeDouble
		case int, int64:
			k = TypeBigint
		case float64:
			k = TypeDouble
		default:
			return TypeText
		}
		switch {
		case kind == "":
			kind = k
		case kind != k:
			kind = TypeDouble
		}
	}
	if kind == "" {
		return TypeText
	}
	return kind
}

func copyRow(row []any, types []string) []any {
	out := make([]any, len(row))
	for j, v := range row {
		switch x := v.(type) {
		case nil:
		case *float64:
			if x != nil {
				out[j] = *x
			}
		case int:
			if types[j] == TypeDouble {
				out[j] = float64(x)
			} else {
				out[j] = int64(x)
			}
		case int64:
			if types[j] == TypeDouble {
				out[j] = float64(x)
			} else {
				out[j] = x
			}
		case float64:
			out[j] = x
		default:
			out[j] = table.FormatValue(x)
		}
	}
	return out
}

// identifier splits an optionally schema-qualified name.
func identifier(target string) pgx.Identifier {
	return pgx.Identifier(strings.Split(target, "."))
}

// DropTableSQL returns the statement that removes the target table.
func DropTableSQL(target string) string {
	return "DROP TABLE IF EXISTS " + identifier(target).Sanitize()
}

// CreateTableSQL returns the DDL for the target table.
func CreateTableSQL(target string, columns, types []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%s %s", pgx.Identifier{c}.Sanitize(), types[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", identifier(target).Sanitize(), strings.Join(defs, ", "))
}
