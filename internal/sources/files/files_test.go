package files_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/cgvn/internal/sources/files"
	"github.com/agentstation/cgvn/internal/utils/ptr"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want files.Format
	}{
		{"a.csv", files.FormatCSV},
		{"a.XLSX", files.FormatXLSX},
		{"a.yml", files.FormatYAML},
		{"dir/a.json", files.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := files.FormatFor(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := files.FormatFor("a.parquet")
	assert.True(t, errors.IsConfigError(err))
}

func TestReadCSVSkipsRowsAboveHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.csv", "Economatica export\n\ngenerated 2021-01-01\nNome,Código,CNPJ\nAcme,ACME3,12.345/67-8\n,,\nBeta,BETA4,\n")

	store, err := files.New(
		files.WithBaseDir(dir),
		files.WithDataset(sources.Registry, files.Dataset{Path: "registry.csv", HeaderRow: 4}),
	)
	require.NoError(t, err)

	got, err := store.Read(context.Background(), sources.Registry)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome", "Código", "CNPJ"}, got.Columns())
	require.Equal(t, 2, got.Len())
	assert.Equal(t, []any{"Acme", "ACME3", "12.345/67-8"}, got.Row(0))
	assert.Nil(t, got.Get(1, "CNPJ"))
}

func TestReadCSVRejectsValuesPastHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.csv", "a,b\n1,2,3\n")

	store, err := files.New(files.WithBaseDir(dir), files.WithDataset(sources.Governance, files.Dataset{Path: "g.csv"}))
	require.NoError(t, err)

	_, err = store.Read(context.Background(), sources.Governance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beyond the last header column")
}

func TestReadUnconfiguredDataset(t *testing.T) {
	store, err := files.New()
	require.NoError(t, err)
	_, err = store.Read(context.Background(), sources.Equity)
	assert.True(t, errors.IsNotFound(err))
}

func TestNewRejectsBadDatasets(t *testing.T) {
	_, err := files.New(files.WithDataset(sources.Equity, files.Dataset{}))
	assert.True(t, errors.IsConfigError(err))

	_, err = files.New(files.WithDataset(sources.Equity, files.Dataset{Path: "equity.txt"}))
	assert.True(t, errors.IsConfigError(err))

	_, err = files.New(files.WithLogger(nil))
	assert.Error(t, err)
}

func outputTable(t *testing.T) *table.Table {
	t.Helper()
	out := table.MustNew("identifier", "year", "ticker", "equity", "1.1")
	require.NoError(t, out.Append("12345678", 2020, "ACME3", 15.0, "Sim"))
	require.NoError(t, out.Append("12345678", 2021, "ACME3", nil, "Não"))
	return out
}

func TestWriteAndReadBack(t *testing.T) {
	for _, ext := range []string{"csv", "xlsx", "yaml", "json"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			store, err := files.New(
				files.WithBaseDir(dir),
				files.WithDataset(sources.Output, files.Dataset{Path: filepath.Join("out", "final."+ext)}),
			)
			require.NoError(t, err)

			require.NoError(t, store.Write(context.Background(), outputTable(t), sources.Output))
			path, ok := store.Path(sources.Output)
			require.True(t, ok)
			assert.FileExists(t, path)

			got, err := store.Read(context.Background(), sources.Output)
			require.NoError(t, err)
			assert.Equal(t, []string{"identifier", "year", "ticker", "equity", "1.1"}, got.Columns())
			require.Equal(t, 2, got.Len())
			assert.Equal(t, "ACME3", got.Get(0, "ticker"))
			assert.Equal(t, "15", table.FormatValue(got.Get(0, "equity")))
			assert.Equal(t, "2021", table.FormatValue(got.Get(1, "year")))
			assert.Nil(t, got.Get(1, "equity"))
		})
	}
}

func TestWriteUnwrapsPointerValues(t *testing.T) {
	dir := t.TempDir()
	store, err := files.New(files.WithBaseDir(dir), files.WithDataset(sources.Output, files.Dataset{Path: "o.json"}))
	require.NoError(t, err)

	out := table.MustNew("ticker", "equity")
	require.NoError(t, out.Append("A", ptr.Float64(2.5)))
	require.NoError(t, out.Append("B", (*float64)(nil)))
	require.NoError(t, store.Write(context.Background(), out, sources.Output))

	got, err := store.Read(context.Background(), sources.Output)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.Get(0, "equity"))
	assert.Nil(t, got.Get(1, "equity"))
}

func TestReadXLSXHeaderRowAndSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "equity.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Patrimonio")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Patrimonio", "A1", "Economatica"))
	require.NoError(t, f.SetSheetRow("Patrimonio", "A4", &[]any{"Data", "Patrim Liq\nAAA3"}))
	require.NoError(t, f.SetSheetRow("Patrimonio", "A5", &[]any{"1T2020", 1234.5}))
	require.NoError(t, f.SetSheetRow("Patrimonio", "A6", &[]any{"2T2020", "-"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store, err := files.New(files.WithDataset(sources.Equity, files.Dataset{
		Path:      path,
		Sheet:     "Patrimonio",
		HeaderRow: 4,
		RawValues: true,
	}))
	require.NoError(t, err)

	got, err := store.Read(context.Background(), sources.Equity)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Patrim Liq\nAAA3"}, got.Columns())
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "1234.5", got.Get(0, "Patrim Liq\nAAA3"))
	assert.Equal(t, "-", got.Get(1, "Patrim Liq\nAAA3"))

	missing, err := files.New(files.WithDataset(sources.Equity, files.Dataset{Path: path, Sheet: "Nope"}))
	require.NoError(t, err)
	_, err = missing.Read(context.Background(), sources.Equity)
	assert.True(t, errors.IsConfigError(err))
}

func TestReadYAMLDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.yaml", "columns: [CNPJ, Código]\nrows:\n  - [12345678, acme3]\n  - [\"87.654.321\", beta4]\n")

	store, err := files.New(files.WithBaseDir(dir), files.WithDataset(sources.Registry, files.Dataset{Path: "registry.yaml"}))
	require.NoError(t, err)

	got, err := store.Read(context.Background(), sources.Registry)
	require.NoError(t, err)
	assert.Equal(t, int64(12345678), got.Get(0, "CNPJ"))
	assert.Equal(t, "87.654.321", got.Get(1, "CNPJ"))
}
