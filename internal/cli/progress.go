package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/schollz/progressbar/v3"
)

// SourceProgress shows a progress bar advancing once per ingested source.
type SourceProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	loaded []ingest.SourceStats
}

// NewSourceProgress creates a progress bar for total sources.
func NewSourceProgress(writer io.Writer, total int) *SourceProgress {
	if writer == nil {
		writer = os.Stderr
	}
	p := &SourceProgress{writer: writer}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Loading sources...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Track records one loaded source and advances the bar. It matches the
// callback signature of ingest.WithProgress.
func (p *SourceProgress) Track(stats ingest.SourceStats) {
	p.loaded = append(p.loaded, stats)
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Loaded %s[reset]", stats.Name))
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Loaded returns the stats of every source tracked so far.
func (p *SourceProgress) Loaded() []ingest.SourceStats {
	return p.loaded
}

// Finish completes the bar even if some sources were never loaded.
func (p *SourceProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
