package files

import (
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/table"
)

const defaultSheet = "Sheet1"

func readXLSX(path, sheet string, headerRow int, raw bool) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, errors.NewParseError("xlsx", path, "workbook has no sheets", nil)
		}
		sheet = list[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NewConfigError("files", "sheet "+sheet+" not found in "+path, err)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: raw})
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}

	header, records, err := headerAndRecords(rows, headerRow, "xlsx", path)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(header, records)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	return t, nil
}

func writeXLSX(path, sheet string, t *table.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	header := make([]any, 0, t.Width())
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := setRow(f, sheet, i+2, cells(t.Row(i))); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	return errors.WrapIO("write", path, f.SaveAs(path))
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cells unwraps pointer values so spreadsheets and documents see plain
// numbers; missing values stay nil.
func cells(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if p, ok := v.(*float64); ok {
			if p != nil {
				out[i] = *p
			}
			continue
		}
		out[i] = v
	}
	return out
}
