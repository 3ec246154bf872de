package files

import (
	"encoding/csv"
	"os"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/table"
)

func readCSV(path string, headerRow int) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}

	header, records, err := headerAndRecords(rows, headerRow, "csv", path)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(header, records)
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	return t, nil
}

func writeCSV(path string, t *table.Table) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	header, records := t.Records()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}
