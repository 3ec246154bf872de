// Package table provides the in-memory tabular model the pipeline passes
// between stages: an ordered set of uniquely named columns and rows of
// nullable cell values. A nil cell is a missing value.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/cgvn/pkg/errors"
)

// Table is an ordered sequence of named columns. Tables are built once by
// the stage that owns them and treated as immutable by every reader.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty table with the given column names.
func New(columns ...string) (*Table, error) {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(t.columns, columns)
	for i, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, errors.NewValidationError("columns", c, fmt.Sprintf("duplicate column name %q", c))
		}
		t.index[c] = i
	}
	return t, nil
}

// MustNew is like New but panics on duplicate column names.
// It is intended for fixed, literal schemas.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecords builds a table from a header and string records, as read
// from delimited or spreadsheet files. Short records are padded with
// missing values; empty cells become missing values.
func FromRecords(header []string, records [][]string) (*Table, error) {
	t, err := New(header...)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, errors.NewValidationError("row", i, fmt.Sprintf("record %d has %d cells, header has %d", i, len(rec), len(header)))
		}
		row := make([]any, len(header))
		for j, cell := range rec {
			if cell != "" {
				row[j] = cell
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.columns)
}

// Has reports whether the table has the named column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Index returns the position of the named column.
func (t *Table) Index(column string) (int, bool) {
	i, ok := t.index[column]
	return i, ok
}

// Append adds a row. The number of values must match the column count.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.columns) {
		return errors.NewValidationError("row", len(t.rows),
			fmt.Sprintf("row has %d values, table has %d columns", len(values), len(t.columns)))
	}
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Get returns the value of column in row i; nil when the column is absent.
func (t *Table) Get(i int, column string) any {
	j, ok := t.index[column]
	if !ok {
		return nil
	}
	return t.rows[i][j]
}

// Column returns a copy of all values of the named column.
func (t *Table) Column(column string) ([]any, error) {
	j, ok := t.index[column]
	if !ok {
		return nil, errors.NewNotFoundError("column", column)
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Require returns an error naming the first column the table lacks.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return errors.NewNotFoundError("column", c)
		}
	}
	return nil
}

// Select returns a new table with only the given columns, in that order.
func (t *Table) Select(columns ...string) (*Table, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	out, err := New(columns...)
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(columns))
	for i, c := range columns {
		positions[i] = t.index[c]
	}
	out.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		r := make([]any, len(positions))
		for k, p := range positions {
			r[k] = row[p]
		}
		out.rows[i] = r
	}
	return out, nil
}

// Rename returns a new table with columns renamed by mapping (old → new).
// Columns absent from mapping keep their names.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		if n, ok := mapping[c]; ok {
			names[i] = n
		} else {
			names[i] = c
		}
	}
	out, err := New(names...)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		r := make([]any, len(row))
		copy(r, row)
		out.rows[i] = r
	}
	return out, nil
}

// Records renders the table as a header and string records for file sinks.
func (t *Table) Records() ([]string, [][]string) {
	records := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = FormatValue(v)
		}
		records[i] = rec
	}
	return t.Columns(), records
}

// Maps renders each row as a column → value map, used by structured sinks.
func (t *Table) Maps() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i, row := range t.rows {
		m := make(map[string]any, len(row))
		for j, c := range t.columns {
			m[c] = row[j]
		}
		out[i] = m
	}
	return out
}

// String renders a cell value as text; missing values render as "".
func String(v any) string {
	return FormatValue(v)
}

// FormatValue renders a cell value for text output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Head returns a new table with at most the first n rows. A negative n
// keeps every row.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.rows) {
		n = len(t.rows)
	}
	out := &Table{columns: t.Columns(), index: make(map[string]int, len(t.columns)), rows: make([][]any, n)}
	for c, i := range t.index {
		out.index[c] = i
	}
	for i := 0; i < n; i++ {
		out.rows[i] = t.Row(i)
	}
	return out
}
