package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/ledgerflow/internal/anomaly"
	"github.com/Veraticus/ledgerflow/internal/cli"
	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/decode"
	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/Veraticus/ledgerflow/internal/metrics"
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addSourceFlags registers the --daily and --historical flags shared by the
// commands that ingest ledgers.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("daily", "", "Daily ledger export (CSV or XLSX)")
	cmd.Flags().StringSlice("historical", nil, "Historical ledger exports, repeatable")
	cmd.Flags().String("sheet", "", "Worksheet to read from XLSX sources (default: first sheet)")
	_ = cmd.MarkFlagRequired("daily")
}

// sourcePaths returns the daily export followed by the historical ones, so the
// daily copy of an invoice wins during deduplication.
func sourcePaths(cmd *cobra.Command) ([]string, error) {
	daily, _ := cmd.Flags().GetString("daily")
	historical, _ := cmd.Flags().GetStringSlice("historical")
	if strings.TrimSpace(daily) == "" {
		return nil, common.NewUserError("A daily export is required (--daily FILE)", common.ErrNoSources)
	}

	return config.ExpandPaths(append([]string{daily}, historical...)...), nil
}

func newDecoder(cmd *cobra.Command) *decode.Decoder {
	sheet, _ := cmd.Flags().GetString("sheet")
	return decode.New(
		decode.WithSheet(sheet),
		decode.WithLogger(slog.Default()),
	)
}

// buildDashboard ingests paths and computes every metric over the result.
// Progress is drawn on progressOut.
func buildDashboard(ctx context.Context, cmd *cobra.Command, paths []string, progressOut io.Writer) (*report.Dashboard, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Configuration is invalid", err)
	}

	progress := cli.NewSourceProgress(progressOut, len(paths))
	pipeline := ingest.New(cfg.Ingest,
		ingest.WithDecoder(newDecoder(cmd)),
		ingest.WithProgress(progress.Track),
		ingest.WithLogger(slog.Default()),
	)

	res, err := pipeline.LoadFiles(ctx, paths...)
	if err != nil {
		return nil, ingestError(err)
	}
	progress.Finish()

	builder := report.NewBuilder(
		metrics.NewEngine(cfg.Metrics),
		anomaly.NewEngine(cfg.Anomaly),
	)
	return builder.Build(res), nil
}

func ingestError(err error) error {
	switch {
	case errors.Is(err, common.ErrSchema):
		return common.NewUserError("A source is missing required columns; run 'ledger schema FILE' to inspect its headers", err)
	case errors.Is(err, common.ErrUnsupported):
		return common.NewUserError("Only CSV and XLSX exports are supported", err)
	case errors.Is(err, common.ErrDecode):
		return common.NewUserError("A source file could not be read", err)
	case errors.Is(err, common.ErrIngestBudget):
		return common.NewUserError("Ingestion took too long; raise ingest.timeout or load fewer files", err)
	case errors.Is(err, context.Canceled):
		return common.NewUserError("Ingestion was cancelled", err)
	}
	return err
}
