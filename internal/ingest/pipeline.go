package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/model"
)

// Decoder turns the bytes of one uploaded export into a source table.
type Decoder interface {
	Decode(ctx context.Context, name string, r io.Reader) (model.SourceTable, error)
}

// SourceStats summarises what happened to one source during ingestion.
type SourceStats struct {
	Dropped    map[DropReason]int `json:"dropped"`
	Name       string             `json:"name"`
	Read       int                `json:"read"`
	Kept       int                `json:"kept"`
	Duplicates int                `json:"duplicates"`
}

// Result is the canonical table produced by one pipeline run plus row accounting.
type Result struct {
	Dropped               map[DropReason]int `json:"dropped"`
	Transactions          model.Table        `json:"-"`
	Sources               []SourceStats      `json:"sources"`
	CrossSourceDuplicates int                `json:"cross_source_duplicates"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDecoder sets the decoder used by LoadFiles.
func WithDecoder(d Decoder) Option {
	return func(p *Pipeline) {
		p.decoder = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithProgress registers a callback invoked after each source is loaded.
func WithProgress(fn func(SourceStats)) Option {
	return func(p *Pipeline) {
		p.onSourceLoaded = fn
	}
}

// Pipeline normalizes, cleans and deduplicates sources into one table.
type Pipeline struct {
	decoder        Decoder
	normalizer     *Normalizer
	cleaner        *Cleaner
	logger         *slog.Logger
	onSourceLoaded func(SourceStats)
	cfg            config.Ingest
}

// New creates a pipeline for the given ingest configuration.
func New(cfg config.Ingest, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = common.LoggerOrDefault(p.logger)
	p.normalizer = NewNormalizer(cfg.Aliases, cfg.Required, p.logger)
	p.cleaner = NewCleaner(cfg, p.logger)
	return p
}

// Normalizer returns the pipeline's schema normalizer.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// LoadSource normalizes, cleans and deduplicates a single source.
func (p *Pipeline) LoadSource(ctx context.Context, src model.SourceTable) (model.Table, SourceStats, error) {
	stats := SourceStats{Name: src.Name, Read: src.Len()}

	nt, err := p.normalizer.Normalize(src)
	if err != nil {
		return nil, stats, err
	}

	cleaned, err := p.cleaner.Clean(ctx, nt)
	if err != nil {
		return nil, stats, err
	}

	table, dups := Dedup(cleaned.Table)
	stats.Dropped = cleaned.Dropped
	stats.Duplicates = dups
	stats.Kept = len(table)

	p.logger.Info("Loaded source",
		"source", src.Name,
		"read", stats.Read,
		"kept", stats.Kept,
		"dropped", cleaned.DroppedTotal(),
		"duplicates", dups)

	return table, stats, nil
}

// Run loads every source and merges them into one deduplicated table.
//
// Sources are concatenated in the order given and the merged table is
// deduplicated keeping the first copy of each InvoiceID, so when the same
// invoice appears in several sources the earliest source wins. Callers that
// want the daily export to take precedence must pass it first.
//
// Any source failure aborts the whole run; no partial table is returned.
func (p *Pipeline) Run(ctx context.Context, sources ...model.SourceTable) (*Result, error) {
	ctx, cancel := p.budget(ctx)
	defer cancel()
	return p.run(ctx, sources)
}

// LoadFiles decodes each path with the configured decoder and runs the
// pipeline over the results in path order.
func (p *Pipeline) LoadFiles(ctx context.Context, paths ...string) (*Result, error) {
	if p.decoder == nil {
		return nil, fmt.Errorf("%w: no decoder configured", common.ErrMissingConfig)
	}
	if len(paths) == 0 {
		return nil, common.ErrNoSources
	}

	ctx, cancel := p.budget(ctx)
	defer cancel()

	sources := make([]model.SourceTable, 0, len(paths))
	for _, path := range paths {
		src, err := p.decodeFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %q: %w", filepath.Base(path), p.budgetErr(ctx, err))
		}
		sources = append(sources, src)
	}

	return p.run(ctx, sources)
}

func (p *Pipeline) run(ctx context.Context, sources []model.SourceTable) (*Result, error) {
	if len(sources) == 0 {
		return nil, common.ErrNoSources
	}

	result := &Result{
		Dropped: make(map[DropReason]int),
		Sources: make([]SourceStats, 0, len(sources)),
	}

	var combined model.Table
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to load source %q: %w", src.Name, p.budgetErr(ctx, err))
		}

		table, stats, err := p.LoadSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %q: %w", src.Name, p.budgetErr(ctx, err))
		}

		for reason, n := range stats.Dropped {
			result.Dropped[reason] += n
		}
		result.Sources = append(result.Sources, stats)
		combined = append(combined, table...)

		if p.onSourceLoaded != nil {
			p.onSourceLoaded(stats)
		}
	}

	merged, dups := Dedup(combined)
	result.Transactions = merged
	result.CrossSourceDuplicates = dups

	p.logger.Info("Merged sources",
		"sources", len(sources),
		"transactions", len(merged),
		"cross_source_duplicates", dups)

	return result, nil
}

func (p *Pipeline) decodeFile(ctx context.Context, path string) (model.SourceTable, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return model.SourceTable{}, common.NewDecodeError(filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	src, err := p.decoder.Decode(ctx, filepath.Base(path), f)
	if err != nil {
		var decodeErr *common.DecodeError
		if errors.As(err, &decodeErr) {
			return model.SourceTable{}, err
		}
		return model.SourceTable{}, common.NewDecodeError(filepath.Base(path), err)
	}
	return src, nil
}

// budget bounds the run by the configured ingest timeout.
func (p *Pipeline) budget(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, p.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (p *Pipeline) budgetErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w (%s): %w", common.ErrIngestBudget, p.cfg.Timeout, err)
	}
	return err
}
