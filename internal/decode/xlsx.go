package decode

import (
	"bytes"
	"fmt"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX decodes the given sheet of a workbook (the first sheet when sheet
// is empty) into a source table. Cells are read as displayed, so dates keep
// the formatting of the workbook.
func ParseXLSX(name string, data []byte, sheet string) (model.SourceTable, []ParseWarning, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return model.SourceTable{}, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return model.SourceTable{}, nil, common.ErrEmptySource
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.SourceTable{}, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return model.SourceTable{}, nil, common.ErrEmptySource
	}

	headers := uniqueHeaders(rows[0])
	src := model.SourceTable{Name: name, Headers: headers}
	var warnings []ParseWarning

	for i, row := range rows[1:] {
		// Trailing empty cells are omitted by excelize, so short rows are expected.
		if len(row) > len(headers) {
			warnings = append(warnings, ParseWarning{
				Row:     i + 2,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), len(headers)),
			})
		}
		row, _ = fitRow(row, len(headers))
		if blank(row) {
			continue
		}
		src.Records = append(src.Records, toRecord(headers, row))
	}

	return src, warnings, nil
}
