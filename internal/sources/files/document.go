package files

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/table"
)

// document is the YAML and JSON layout of a table. Rows are positional so
// column order survives a round trip.
type document struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

func newDocument(t *table.Table) document {
	doc := document{Columns: t.Columns(), Rows: make([][]any, t.Len())}
	for i := range doc.Rows {
		doc.Rows[i] = cells(t.Row(i))
	}
	return doc
}

func (d document) table(format, path string) (*table.Table, error) {
	t, err := table.New(d.Columns...)
	if err != nil {
		return nil, errors.WrapParse(format, path, err)
	}
	for i, row := range d.Rows {
		if len(row) > len(d.Columns) {
			return nil, errors.NewParseError(format, path,
				fmt.Sprintf("row %d has %d cells, header has %d", i, len(row), len(d.Columns)), nil)
		}
		values := make([]any, len(d.Columns))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := t.Append(values...); err != nil {
			return nil, errors.WrapParse(format, path, err)
		}
	}
	return t, nil
}

// cellValue folds the integer types decoders produce into int64.
func cellValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return int64(x)
	default:
		return v
	}
}

func readYAML(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return doc.table("yaml", path)
}

func writeYAML(path string, t *table.Table) error {
	data, err := yaml.Marshal(newDocument(t))
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, constants.FilePermissions))
}

func readJSON(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return doc.table("json", path)
}

func writeJSON(path string, t *table.Table) error {
	data, err := json.MarshalIndent(newDocument(t), "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, append(data, '\n'), constants.FilePermissions))
}
