// Package ingest turns decoded ledger exports into the canonical transaction table.
package ingest

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/model"
)

// NormalizedTable is a source table whose columns carry canonical field names.
// Unmapped columns keep their trimmed source header.
type NormalizedTable struct {
	Source  string
	Columns []string
	Rows    []model.Record
	// Renamed records source header -> canonical field for every mapped header.
	Renamed map[string]string
}

// HasColumn reports whether the table has a column with the given name.
func (n *NormalizedTable) HasColumn(name string) bool {
	for _, c := range n.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Normalizer maps source headers onto canonical field names.
type Normalizer struct {
	aliases  map[string]string
	logger   *slog.Logger
	required []string
}

// NewNormalizer creates a normalizer over the given alias table and required fields.
func NewNormalizer(aliases map[string]string, required []string, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		aliases:  aliases,
		required: required,
		logger:   common.LoggerOrDefault(logger),
	}
}

// Normalize renames the columns of src using the alias table and checks that
// every required field is present. The source table is not modified.
func (n *Normalizer) Normalize(src model.SourceTable) (*NormalizedTable, error) {
	report := n.Describe(src.Headers)
	if !report.OK() {
		return nil, &common.SchemaError{Source: src.Name, Missing: report.Missing}
	}

	columns := make([]string, 0, len(report.Columns))
	rename := make(map[string]string, len(report.Columns))
	renamed := make(map[string]string)

	for _, col := range report.Columns {
		if col.Skipped {
			n.logger.Warn("Dropping column whose name clashes with an earlier column",
				"source", src.Name,
				"header", col.Header)
			continue
		}
		if col.Passthrough && n.aliases[strings.TrimSpace(col.Header)] != "" {
			n.logger.Warn("Column resolves to a field that is already mapped, keeping it as passthrough",
				"source", src.Name,
				"header", col.Header,
				"field", n.aliases[strings.TrimSpace(col.Header)])
		}

		rename[col.Header] = col.Field
		columns = append(columns, col.Field)
		if !col.Passthrough {
			renamed[col.Header] = col.Field
		}
	}

	rows := make([]model.Record, len(src.Records))
	for i, rec := range src.Records {
		row := make(model.Record, len(rename))
		for header, target := range rename {
			if v, ok := rec[header]; ok {
				row[target] = v
			}
		}
		rows[i] = row
	}

	return &NormalizedTable{
		Source:  src.Name,
		Columns: columns,
		Rows:    rows,
		Renamed: renamed,
	}, nil
}

// ColumnMapping is how one source header is treated by the normalizer.
type ColumnMapping struct {
	Header string `json:"header"`
	Field  string `json:"field"`
	// Passthrough is set for headers that do not map to a canonical field.
	Passthrough bool `json:"passthrough"`
	// Skipped is set for headers dropped because their name clashes with an
	// earlier column.
	Skipped bool `json:"skipped"`
}

// SchemaReport previews how a set of headers would be normalized.
type SchemaReport struct {
	Columns []ColumnMapping `json:"columns"`
	Missing []string        `json:"missing"`
}

// OK reports whether every required field is present.
func (r SchemaReport) OK() bool {
	return len(r.Missing) == 0
}

// Describe applies the same mapping rules as Normalize to headers alone.
func (n *Normalizer) Describe(headers []string) SchemaReport {
	var report SchemaReport
	taken := make(map[string]string, len(headers))

	for _, header := range headers {
		trimmed := strings.TrimSpace(header)
		target := trimmed
		if field, ok := n.aliases[trimmed]; ok {
			target = field
		}

		col := ColumnMapping{Header: header, Field: target}
		if _, dup := taken[target]; dup {
			target = trimmed
			col.Field = trimmed
			if _, clash := taken[target]; clash {
				col.Skipped = true
				report.Columns = append(report.Columns, col)
				continue
			}
		}
		col.Passthrough = !model.IsCanonicalField(target)
		taken[target] = header
		report.Columns = append(report.Columns, col)
	}

	report.Missing = missingFields(taken, n.required)
	return report
}

func missingFields(present map[string]string, required []string) []string {
	var missing []string
	for _, f := range required {
		if _, ok := present[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
