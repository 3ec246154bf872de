// Package reshape converts tables between long (one row per observation)
// and wide (one row per entity, one column per observation type) form.
package reshape

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/table"
)

// keySep joins rendered key parts; it cannot occur in rendered cell text
// coming from the supported file formats.
const keySep = "\x00"

// Pivot groups rows by rowKeys and emits one row per group with one column
// per distinct value of columnKey, populated from valueKey.
//
// Output columns are rowKeys followed by the pivot columns in ascending
// order; groups are emitted in ascending key order. Combinations absent
// from the input are missing (nil). A (row key, column key) pair seen
// twice yields a *errors.StructuralConflictError.
func Pivot(t *table.Table, rowKeys []string, columnKey, valueKey string) (*table.Table, error) {
	if err := t.Require(append(append([]string{}, rowKeys...), columnKey, valueKey)...); err != nil {
		return nil, err
	}

	type group struct {
		key    []any
		values map[string]any
	}

	groups := make(map[string]*group)
	var order []*group
	seen := make(map[string]int)
	pivotColumns := make(map[string]struct{})

	for i := 0; i < t.Len(); i++ {
		colValue := t.Get(i, columnKey)
		if colValue == nil {
			return nil, errors.NewValidationError(columnKey, nil, fmt.Sprintf("missing pivot column value at row %d", i))
		}
		col := table.FormatValue(colValue)

		key := make([]any, len(rowKeys))
		parts := make([]string, len(rowKeys))
		for k, rk := range rowKeys {
			key[k] = t.Get(i, rk)
			parts[k] = table.FormatValue(key[k])
		}
		gk := strings.Join(parts, keySep)

		cellKey := gk + keySep + keySep + col
		if first, dup := seen[cellKey]; dup {
			return nil, errors.NewStructuralConflictError("", parts, col, first, i)
		}
		seen[cellKey] = i

		g, ok := groups[gk]
		if !ok {
			g = &group{key: key, values: make(map[string]any)}
			groups[gk] = g
			order = append(order, g)
		}
		g.values[col] = t.Get(i, valueKey)
		pivotColumns[col] = struct{}{}
	}

	columns := make([]string, 0, len(pivotColumns))
	for c := range pivotColumns {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	out, err := table.New(append(append([]string{}, rowKeys...), columns...)...)
	if err != nil {
		return nil, fmt.Errorf("pivot column collides with a row key: %w", err)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return compareKeys(order[a].key, order[b].key) < 0
	})

	for _, g := range order {
		row := make([]any, 0, len(rowKeys)+len(columns))
		row = append(row, g.key...)
		for _, c := range columns {
			row = append(row, g.values[c])
		}
		if err := out.Append(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Melt is the inverse of Pivot. For every input row and every value column
// it emits one row of idColumns, varName (the value column's name) and
// valueName (the cell). Rows are emitted row-major: all value columns of
// the first input row, then the second. An empty valueColumns means every
// column that is not an id column.
func Melt(t *table.Table, idColumns, valueColumns []string, varName, valueName string) (*table.Table, error) {
	if err := t.Require(idColumns...); err != nil {
		return nil, err
	}
	if len(valueColumns) == 0 {
		ids := make(map[string]struct{}, len(idColumns))
		for _, c := range idColumns {
			ids[c] = struct{}{}
		}
		for _, c := range t.Columns() {
			if _, isID := ids[c]; !isID {
				valueColumns = append(valueColumns, c)
			}
		}
	} else if err := t.Require(valueColumns...); err != nil {
		return nil, err
	}

	out, err := table.New(append(append([]string{}, idColumns...), varName, valueName)...)
	if err != nil {
		return nil, err
	}

	for i := 0; i < t.Len(); i++ {
		ids := make([]any, len(idColumns))
		for k, c := range idColumns {
			ids[k] = t.Get(i, c)
		}
		for _, vc := range valueColumns {
			row := make([]any, 0, len(idColumns)+2)
			row = append(row, ids...)
			row = append(row, vc, t.Get(i, vc))
			if err := out.Append(row...); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// compareKeys orders key tuples element-wise; numbers compare numerically,
// everything else by rendered text, and missing values sort first.
func compareKeys(a, b []any) int {
	for i := range a {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(table.FormatValue(a), table.FormatValue(b))
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
