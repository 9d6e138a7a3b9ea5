// Package decode reads uploaded ledger exports (CSV and XLSX) into source tables.
package decode

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/model"
)

// DefaultMaxBytes caps how much of a single upload is read.
const DefaultMaxBytes int64 = 64 << 20

// Format identifies a supported export format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the format from a file name's extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupported, filepath.Ext(name))
	}
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithSheet selects the worksheet read from workbooks.
func WithSheet(name string) Option {
	return func(d *Decoder) {
		d.sheet = name
	}
}

// WithMaxBytes sets the upload size limit.
func WithMaxBytes(n int64) Option {
	return func(d *Decoder) {
		d.maxBytes = n
	}
}

// WithComma sets the CSV field delimiter.
func WithComma(r rune) Option {
	return func(d *Decoder) {
		d.comma = r
	}
}

// WithLogger sets the logger used for parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = l
	}
}

// Decoder dispatches uploads to the CSV or XLSX parser by file extension.
type Decoder struct {
	logger   *slog.Logger
	sheet    string
	maxBytes int64
	comma    rune
}

// New creates a decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{maxBytes: DefaultMaxBytes, comma: ','}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = common.LoggerOrDefault(d.logger)
	return d
}

// Decode reads r fully and parses it according to name's extension.
// Every failure is returned as a *common.DecodeError.
func (d *Decoder) Decode(ctx context.Context, name string, r io.Reader) (model.SourceTable, error) {
	format, err := FormatFor(name)
	if err != nil {
		return model.SourceTable{}, common.NewDecodeError(name, err)
	}

	data, err := d.readAll(r)
	if err != nil {
		return model.SourceTable{}, common.NewDecodeError(name, err)
	}
	if err := ctx.Err(); err != nil {
		return model.SourceTable{}, common.NewDecodeError(name, err)
	}

	var (
		src      model.SourceTable
		warnings []ParseWarning
	)
	switch format {
	case FormatXLSX:
		src, warnings, err = ParseXLSX(name, data, d.sheet)
	default:
		src, warnings, err = ParseCSV(name, data, d.comma)
	}
	if err != nil {
		return model.SourceTable{}, common.NewDecodeError(name, err)
	}

	for _, w := range warnings {
		d.logger.Warn("Parse warning", "source", name, "row", w.Row, "message", w.Message)
	}
	d.logger.Debug("Decoded source",
		"source", name,
		"format", format,
		"columns", len(src.Headers),
		"rows", src.Len())

	return src, nil
}

func (d *Decoder) readAll(r io.Reader) ([]byte, error) {
	if d.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("upload exceeds %d byte limit", d.maxBytes)
	}
	return data, nil
}
