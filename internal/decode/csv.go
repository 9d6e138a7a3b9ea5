package decode

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/model"
)

// ParseWarning represents a non-fatal issue encountered while decoding.
type ParseWarning struct {
	Message string `json:"message"`
	Row     int    `json:"row"`
}

// ParseCSV decodes CSV bytes into a source table. Header strings and cell
// values are kept verbatim; ragged rows are padded or truncated to the header
// width and reported as warnings.
func ParseCSV(name string, data []byte, comma rune) (model.SourceTable, []ParseWarning, error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return model.SourceTable{}, nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if comma != 0 {
		reader.Comma = comma
	}

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.SourceTable{}, nil, common.ErrEmptySource
		}
		return model.SourceTable{}, nil, fmt.Errorf("failed to read header row: %w", err)
	}
	headers = uniqueHeaders(headers)

	src := model.SourceTable{Name: name, Headers: headers}
	var warnings []ParseWarning
	rowNum := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			warnings = append(warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}

		row, warning := fitRow(row, len(headers))
		if warning != "" {
			warnings = append(warnings, ParseWarning{Row: rowNum, Message: warning})
		}
		if blank(row) {
			continue
		}

		src.Records = append(src.Records, toRecord(headers, row))
	}

	return src, warnings, nil
}

// uniqueHeaders suffixes repeated header names with .1, .2, ... so every
// column stays addressable.
func uniqueHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := h
		for n := seen[h]; n > 0; n++ {
			candidate := fmt.Sprintf("%s.%d", h, n)
			if _, taken := seen[candidate]; !taken {
				name = candidate
				break
			}
		}
		seen[h]++
		if name != h {
			seen[name]++
		}
		out[i] = name
	}
	return out
}

// fitRow pads or truncates row to width columns.
func fitRow(row []string, width int) ([]string, string) {
	switch {
	case len(row) < width:
		padded := make([]string, width)
		copy(padded, row)
		return padded, fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), width)
	case len(row) > width:
		return row[:width], fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), width)
	default:
		return row, ""
	}
}

func toRecord(headers, row []string) model.Record {
	rec := make(model.Record, len(headers))
	for i, h := range headers {
		rec[h] = row[i]
	}
	return rec
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
