package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/table"
)

func TestNew(t *testing.T) {
	t.Run("keeps column order", func(t *testing.T) {
		tbl, err := table.New("b", "a", "c")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, tbl.Columns())
		assert.Equal(t, 3, tbl.Width())
		assert.Equal(t, 0, tbl.Len())
	})

	t.Run("rejects duplicate columns", func(t *testing.T) {
		_, err := table.New("a", "a")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("MustNew panics on duplicates", func(t *testing.T) {
		assert.Panics(t, func() { table.MustNew("x", "x") })
	})
}

func TestAppendAndAccess(t *testing.T) {
	tbl := table.MustNew("identifier", "ticker")
	require.NoError(t, tbl.Append("123", "ABC"))
	require.NoError(t, tbl.Append("456", nil))

	err := tbl.Append("only-one")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "ABC", tbl.Get(0, "ticker"))
	assert.Nil(t, tbl.Get(1, "ticker"))
	assert.Nil(t, tbl.Get(0, "missing"))

	col, err := tbl.Column("identifier")
	require.NoError(t, err)
	assert.Equal(t, []any{"123", "456"}, col)

	_, err = tbl.Column("nope")
	assert.True(t, errors.IsNotFound(err))

	row := tbl.Row(0)
	row[0] = "mutated"
	assert.Equal(t, "123", tbl.Get(0, "identifier"), "Row must return a copy")
}

func TestFromRecords(t *testing.T) {
	tbl, err := table.FromRecords([]string{"a", "b", "c"}, [][]string{
		{"1", "", "3"},
		{"4"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"1", nil, "3"}, tbl.Row(0))
	assert.Equal(t, []any{"4", nil, nil}, tbl.Row(1))

	_, err = table.FromRecords([]string{"a"}, [][]string{{"1", "2"}})
	assert.Error(t, err)
}

func TestSelectAndRename(t *testing.T) {
	tbl := table.MustNew("a", "b", "c")
	require.NoError(t, tbl.Append(1, 2, 3))

	sel, err := tbl.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Columns())
	assert.Equal(t, []any{3, 1}, sel.Row(0))

	_, err = tbl.Select("z")
	assert.True(t, errors.IsNotFound(err))

	ren, err := tbl.Rename(map[string]string{"a": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "b", "c"}, ren.Columns())
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns(), "Rename must not touch the source")

	_, err = tbl.Rename(map[string]string{"a": "b"})
	assert.Error(t, err, "rename into an existing name is a duplicate")
}

func TestRecordsAndFormat(t *testing.T) {
	v := 2.5
	tbl := table.MustNew("s", "f", "i", "p", "n", "b")
	require.NoError(t, tbl.Append("x", 100.0, 2020, &v, nil, true))

	header, records := tbl.Records()
	assert.Equal(t, []string{"s", "f", "i", "p", "n", "b"}, header)
	assert.Equal(t, [][]string{{"x", "100", "2020", "2.5", "", "true"}}, records)

	maps := tbl.Maps()
	require.Len(t, maps, 1)
	assert.Equal(t, 2020, maps[0]["i"])
	assert.Nil(t, maps[0]["n"])

	var nilPtr *float64
	assert.Equal(t, "", table.FormatValue(nilPtr))
	assert.Equal(t, "7", table.String(int64(7)))
}

func TestHead(t *testing.T) {
	tbl := table.MustNew("n")
	for i := 0; i < 5; i++ {
		require.NoError(t, tbl.Append(i))
	}

	head := tbl.Head(2)
	assert.Equal(t, 2, head.Len())
	assert.Equal(t, []string{"n"}, head.Columns())
	assert.Equal(t, 1, head.Get(1, "n"))

	assert.Equal(t, 5, tbl.Head(-1).Len())
	assert.Equal(t, 5, tbl.Head(10).Len())
	assert.Equal(t, 5, tbl.Len())
}
