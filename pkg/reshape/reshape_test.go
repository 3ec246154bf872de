package reshape_test

import (
	stderrors "errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/reshape"
	"github.com/agentstation/cgvn/pkg/table"
)

func longGovernance(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.MustNew("identifier", "period", "item_id", "practice_value")
	rows := [][]any{
		{"222", "1T2021", "X2", "N"},
		{"111", "1T2020", "X1", "S"},
		{"111", "1T2020", "X2", "N"},
		{"222", "1T2021", "X1", "P"},
		{"111", "1T2021", "X1", "S"},
	}
	for _, r := range rows {
		require.NoError(t, tbl.Append(r...))
	}
	return tbl
}

func TestPivot(t *testing.T) {
	wide, err := reshape.Pivot(longGovernance(t), []string{"identifier", "period"}, "item_id", "practice_value")
	require.NoError(t, err)

	assert.Equal(t, []string{"identifier", "period", "X1", "X2"}, wide.Columns())
	require.Equal(t, 3, wide.Len(), "5 long rows collapse to 3 groups")

	assert.Equal(t, []any{"111", "1T2020", "S", "N"}, wide.Row(0))
	assert.Equal(t, []any{"111", "1T2021", "S", nil}, wide.Row(1), "absent combination is missing")
	assert.Equal(t, []any{"222", "1T2021", "P", "N"}, wide.Row(2))
}

func TestPivotConflict(t *testing.T) {
	tbl := longGovernance(t)
	require.NoError(t, tbl.Append("111", "1T2020", "X1", "N"))

	_, err := reshape.Pivot(tbl, []string{"identifier", "period"}, "item_id", "practice_value")
	require.Error(t, err)
	assert.True(t, errors.IsStructuralConflict(err))

	var conflict *errors.StructuralConflictError
	require.True(t, stderrors.As(err, &conflict))
	assert.Equal(t, []string{"111", "1T2020"}, conflict.RowKey)
	assert.Equal(t, "X1", conflict.ColumnKey)
	assert.Equal(t, 1, conflict.FirstRow)
	assert.Equal(t, 5, conflict.Row)
}

func TestPivotErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		_, err := reshape.Pivot(longGovernance(t), []string{"identifier"}, "nope", "practice_value")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("missing pivot value", func(t *testing.T) {
		tbl := table.MustNew("id", "col", "val")
		require.NoError(t, tbl.Append("1", nil, "v"))
		_, err := reshape.Pivot(tbl, []string{"id"}, "col", "val")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("pivot column collides with row key", func(t *testing.T) {
		tbl := table.MustNew("id", "col", "val")
		require.NoError(t, tbl.Append("1", "id", "v"))
		_, err := reshape.Pivot(tbl, []string{"id"}, "col", "val")
		assert.Error(t, err)
	})
}

func TestPivotSortsNumericKeysNumerically(t *testing.T) {
	tbl := table.MustNew("year", "col", "val")
	require.NoError(t, tbl.Append(10, "a", 1))
	require.NoError(t, tbl.Append(9, "a", 2))

	wide, err := reshape.Pivot(tbl, []string{"year"}, "col", "val")
	require.NoError(t, err)
	assert.Equal(t, 9, wide.Get(0, "year"))
	assert.Equal(t, 10, wide.Get(1, "year"))
}

func TestMelt(t *testing.T) {
	wide := table.MustNew("date_label", "ABC", "XYZ")
	require.NoError(t, wide.Append("1T2020", 1.0, "-"))
	require.NoError(t, wide.Append("2T2020", nil, 4.0))

	long, err := reshape.Melt(wide, []string{"date_label"}, nil, "ticker", "equity")
	require.NoError(t, err)

	assert.Equal(t, []string{"date_label", "ticker", "equity"}, long.Columns())
	require.Equal(t, 4, long.Len(), "2 rows x 2 value columns")
	assert.Equal(t, []any{"1T2020", "ABC", 1.0}, long.Row(0))
	assert.Equal(t, []any{"1T2020", "XYZ", "-"}, long.Row(1))
	assert.Equal(t, []any{"2T2020", "ABC", nil}, long.Row(2))
	assert.Equal(t, []any{"2T2020", "XYZ", 4.0}, long.Row(3))

	t.Run("explicit value columns", func(t *testing.T) {
		only, err := reshape.Melt(wide, []string{"date_label"}, []string{"XYZ"}, "ticker", "equity")
		require.NoError(t, err)
		assert.Equal(t, 2, only.Len())
	})

	t.Run("unknown value column", func(t *testing.T) {
		_, err := reshape.Melt(wide, []string{"date_label"}, []string{"NOPE"}, "ticker", "equity")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestPivotThenMeltRecoversLongRows(t *testing.T) {
	long := longGovernance(t)
	rowKeys := []string{"identifier", "period"}

	wide, err := reshape.Pivot(long, rowKeys, "item_id", "practice_value")
	require.NoError(t, err)

	back, err := reshape.Melt(wide, rowKeys, nil, "item_id", "practice_value")
	require.NoError(t, err)

	render := func(tbl *table.Table, skipMissing bool) []string {
		var out []string
		for i := 0; i < tbl.Len(); i++ {
			if skipMissing && tbl.Get(i, "practice_value") == nil {
				continue
			}
			out = append(out, table.FormatValue(tbl.Get(i, "identifier"))+"|"+
				table.FormatValue(tbl.Get(i, "period"))+"|"+
				table.FormatValue(tbl.Get(i, "item_id"))+"|"+
				table.FormatValue(tbl.Get(i, "practice_value")))
		}
		sort.Strings(out)
		return out
	}

	assert.Equal(t, render(long, false), render(back, true))
}
