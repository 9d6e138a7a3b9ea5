package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/ledgerflow/internal/cli"
	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema FILE...",
		Short: "Show how export headers map onto ledger fields",
		Long: `Decode each file and report which headers map to canonical fields, which
pass through unchanged, and which required fields are missing.

Missing fields are reported, not treated as a failure.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSchema,
	}

	cmd.Flags().String("sheet", "", "Worksheet to read from XLSX sources (default: first sheet)")

	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("Configuration is invalid", err)
	}

	decoder := newDecoder(cmd)
	normalizer := ingest.New(cfg.Ingest).Normalizer()

	for _, arg := range args {
		path := config.ExpandPath(arg)
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", arg, err)
		}

		src, err := decoder.Decode(cmd.Context(), filepath.Base(path), f)
		_ = f.Close()
		if err != nil {
			return ingestError(err)
		}

		if err := cli.RenderSchema(cmd.OutOrStdout(), src.Name, normalizer.Describe(src.Headers)); err != nil {
			return err
		}
	}
	return nil
}
