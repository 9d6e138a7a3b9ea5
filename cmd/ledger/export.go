package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerflow/internal/cli"
	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/Veraticus/ledgerflow/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type dashboardWriter interface {
	Write(ctx context.Context, d *report.Dashboard) error
}

// newDashboardWriter is replaced in tests.
var newDashboardWriter = func(ctx context.Context, cfg sheets.Config) (dashboardWriter, error) {
	w, err := sheets.NewWriter(ctx, cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return w, nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sales dashboard to Google Sheets",
		Long: `Ingest the given exports and write the dashboard into a Google Sheets
spreadsheet, one tab each for the summary, monthly series, breakdowns and
anomalies.

Authenticate first with 'ledger auth sheets' or configure a service account.`,
		RunE: runExport,
	}

	addSourceFlags(cmd)
	cmd.Flags().String("spreadsheet-id", "", "Existing spreadsheet to overwrite (default: create a new one)")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	paths, err := sourcePaths(cmd)
	if err != nil {
		return err
	}

	sheetsCfg, err := sheets.LoadConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError("Google Sheets is not configured; run 'ledger auth sheets' first", err)
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), "Export")
	defer interruptHandler.Stop()

	d, err := buildDashboard(ctx, cmd, paths, cmd.ErrOrStderr())
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		return err
	}

	writer, err := newDashboardWriter(ctx, *sheetsCfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	slog.Info("Exporting dashboard to Google Sheets", "spreadsheet", sheetsCfg.SpreadsheetName)
	if err := writer.Write(ctx, d); err != nil {
		return fmt.Errorf("failed to export dashboard: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to Google Sheets", d.KPIs.Transactions)))
	return err
}
