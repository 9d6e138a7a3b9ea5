package main

import (
	"fmt"

	"github.com/Veraticus/ledgerflow/internal/cli"
	"github.com/Veraticus/ledgerflow/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Ingest ledger exports and show the sales dashboard",
		Long: `Ingest the daily export plus any historical exports, then report KPIs,
monthly revenue, breakdowns, anomalies and the month-end forecast.

When the same invoice appears in several files, the daily export wins.`,
		Example: `  ledger dashboard --daily today.xlsx --historical 2023.csv --historical 2024.csv
  ledger dashboard --daily today.csv --format json
  ledger dashboard --daily today.csv --interactive`,
		RunE: runDashboard,
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	cmd.Flags().BoolP("interactive", "i", false, "Browse the dashboard in a full-screen viewer")

	_ = viper.BindPFlag("dashboard.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("dashboard.interactive", cmd.Flags().Lookup("interactive"))

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	format := viper.GetString("dashboard.format")
	interactive := viper.GetBool("dashboard.interactive")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q: use text or json", format)
	}

	paths, err := sourcePaths(cmd)
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), "Dashboard")
	defer interruptHandler.Stop()

	d, err := buildDashboard(ctx, cmd, paths, cmd.ErrOrStderr())
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		return err
	}

	switch {
	case interactive:
		return tui.Run(ctx, d)
	case format == "json":
		return cli.RenderJSON(cmd.OutOrStdout(), d)
	default:
		return cli.RenderDashboard(cmd.OutOrStdout(), d)
	}
}
