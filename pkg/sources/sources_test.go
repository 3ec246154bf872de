package sources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
)

type staticSource struct {
	t *table.Table
}

func (s staticSource) Read(context.Context, sources.Name) (*table.Table, error) {
	return s.t, nil
}

type recordingSink struct {
	names []sources.Name
	err   error
}

func (s *recordingSink) Write(_ context.Context, _ *table.Table, name sources.Name) error {
	s.names = append(s.names, name)
	return s.err
}

func TestRouter(t *testing.T) {
	reg := table.MustNew("CNPJ", "Código")
	router := sources.NewRouter()
	router.Set(sources.Registry, staticSource{t: reg})

	got, err := router.Read(context.Background(), sources.Registry)
	require.NoError(t, err)
	assert.Same(t, reg, got)
	assert.Equal(t, []sources.Name{sources.Registry}, router.Names())

	_, err = router.Read(context.Background(), sources.Equity)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSinksStopAtFirstFailure(t *testing.T) {
	first := &recordingSink{err: errors.New("disk full")}
	second := &recordingSink{}

	err := sources.Sinks{first, second}.Write(context.Background(), table.MustNew("a"), sources.Output)
	require.Error(t, err)
	assert.Equal(t, []sources.Name{sources.Output}, first.names)
	assert.Empty(t, second.names)
}

func TestMappingApply(t *testing.T) {
	t.Run("registry keeps only mapped columns", func(t *testing.T) {
		raw, err := table.FromRecords(
			[]string{"Nome", "Código", "CNPJ"},
			[][]string{{"Acme", "acme3", "12.345/67-8"}},
		)
		require.NoError(t, err)

		got, err := sources.DefaultMapping(sources.Registry).Apply(raw, sources.RegistrySchema)
		require.NoError(t, err)
		assert.Equal(t, []string{"identifier", "ticker"}, got.Columns())
		assert.Equal(t, []any{"12.345/67-8", "acme3"}, got.Row(0))
	})

	t.Run("equity passes tickers through with normalized headers", func(t *testing.T) {
		raw, err := table.FromRecords(
			[]string{"Data", "Patrim Liq\nEm milhares\nAAA3", "BBB4"},
			[][]string{{"1T2020", "10", "-"}},
		)
		require.NoError(t, err)

		got, err := sources.DefaultMapping(sources.Equity).Apply(raw, sources.EquitySchema)
		require.NoError(t, err)
		assert.Equal(t, []string{"date_label", "AAA3", "BBB4"}, got.Columns())
	})

	t.Run("missing source column fails loudly", func(t *testing.T) {
		raw := table.MustNew("CNPJ")
		_, err := sources.DefaultMapping(sources.Registry).Apply(raw, sources.RegistrySchema)
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
		assert.Contains(t, err.Error(), "Código")
	})
}

func TestMappingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mapping sources.Mapping
		wantErr string
	}{
		{
			name:    "unrecognized field",
			mapping: sources.Mapping{"CNPJ": "identifier", "Código": "ticker", "Setor": "sector"},
			wantErr: `unrecognized field "sector"`,
		},
		{
			name:    "field mapped twice",
			mapping: sources.Mapping{"A": "identifier", "B": "identifier", "C": "ticker"},
			wantErr: `mapped more than once`,
		},
		{
			name:    "required field missing",
			mapping: sources.Mapping{"CNPJ": "identifier"},
			wantErr: `required field "ticker"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate(sources.RegistrySchema)
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, sources.DefaultMapping(sources.Governance).Validate(sources.GovernanceSchema))
}

func TestSchemaFor(t *testing.T) {
	s, ok := sources.SchemaFor(sources.Equity)
	require.True(t, ok)
	assert.True(t, s.Passthrough)

	_, ok = sources.SchemaFor(sources.Output)
	assert.False(t, ok)
}
