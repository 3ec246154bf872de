package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cgvn/internal/sources/postgres"
	"github.com/agentstation/cgvn/internal/utils/ptr"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
)

func outputTable(t *testing.T) *table.Table {
	t.Helper()
	out := table.MustNew("identifier", "year", "ticker", "equity", "1.1", "2.3")
	require.NoError(t, out.Append("12345678", 2020, "ACME3", 15.0, "Sim", nil))
	require.NoError(t, out.Append("12345678", 2021, "ACME3", nil, "Não", nil))
	return out
}

func TestColumnTypes(t *testing.T) {
	assert.Equal(t,
		[]string{postgres.TypeText, postgres.TypeBigint, postgres.TypeText, postgres.TypeDouble, postgres.TypeText, postgres.TypeText},
		postgres.ColumnTypes(outputTable(t)))

	mixed := table.MustNew("v")
	require.NoError(t, mixed.Append(1))
	require.NoError(t, mixed.Append(ptr.Float64(2.5)))
	assert.Equal(t, []string{postgres.TypeDouble}, postgres.ColumnTypes(mixed))
}

func TestSQL(t *testing.T) {
	out := outputTable(t)
	assert.Equal(t,
		`CREATE TABLE "analytics"."governance_equity" ("identifier" text, "year" bigint, "ticker" text, "equity" double precision, "1.1" text, "2.3" text)`,
		postgres.CreateTableSQL("analytics.governance_equity", out.Columns(), postgres.ColumnTypes(out)))
	assert.Equal(t, `DROP TABLE IF EXISTS "output"`, postgres.DropTableSQL("output"))
}

func TestOptions(t *testing.T) {
	s, err := postgres.NewWithDB(nil, postgres.WithTable(sources.Output, "governance_equity"))
	require.NoError(t, err)
	assert.Equal(t, "governance_equity", s.Target(sources.Output))
	assert.Equal(t, "registry", s.Target(sources.Registry))

	_, err = postgres.NewWithDB(nil, postgres.WithTable(sources.Output, " "))
	assert.True(t, errors.IsConfigError(err))

	_, err = postgres.New(context.Background(), "")
	assert.True(t, errors.IsConfigError(err))
}

func TestSinkIntegration(t *testing.T) {
	dsn := os.Getenv("CGVN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CGVN_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	sink, err := postgres.New(ctx, dsn, postgres.WithTable(sources.Output, "cgvn_sink_test"))
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(ctx, outputTable(t), sources.Output))
	// a second write replaces the first
	require.NoError(t, sink.Write(ctx, outputTable(t), sources.Output))

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	var n int
	require.NoError(t, conn.QueryRow(ctx, `SELECT count(*) FROM cgvn_sink_test`).Scan(&n))
	assert.Equal(t, 2, n)

	var equity *float64
	require.NoError(t, conn.QueryRow(ctx, `SELECT equity FROM cgvn_sink_test WHERE year = 2021`).Scan(&equity))
	assert.Nil(t, equity)

	_, err = conn.Exec(ctx, `DROP TABLE cgvn_sink_test`)
	require.NoError(t, err)
}
