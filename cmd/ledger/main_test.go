package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/Veraticus/ledgerflow/internal/sheets"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerHeader = "Bill ID,Date,Agent,Amount,Gross,Discount,Organisation Revenue Amount,Referral Revenue Amount,Patient Name,Organisation,Referral\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ledgerFiles writes a daily and a historical export that share invoice 1.
func ledgerFiles(t *testing.T) (daily, historical string) {
	t.Helper()
	dir := t.TempDir()
	daily = writeFile(t, dir, "daily.csv", ledgerHeader+
		"1,2024-05-01,Asha,500,520,20,300,200,Ravi,Apollo,Dr. Rao\n")
	historical = writeFile(t, dir, "historical.csv", ledgerHeader+
		"1,2024-05-01,Asha,100,100,0,50,50,Ravi,Apollo,Dr. Rao\n"+
		"2,2024-04-03,Ben,1200,1250,50,1000,200,Mira,Apollo,Dr. Sen\n"+
		"3,not-a-date,Ben,75,75,0,0,0,Mira,Apollo,Dr. Sen\n")
	return daily, historical
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDashboardCmd_JSON(t *testing.T) {
	viper.Reset()
	daily, historical := ledgerFiles(t)

	out, err := execute(t, dashboardCmd(), "--daily", daily, "--historical", historical, "--format", "json")
	require.NoError(t, err)

	var d report.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))

	assert.Equal(t, 2, d.KPIs.Transactions)
	assert.True(t, d.KPIs.TotalRevenue.Equal(decimal.NewFromInt(1700)), d.KPIs.TotalRevenue.String())
	assert.Equal(t, 1, d.Speciality.Count)
	require.NotNil(t, d.Ingestion)
	assert.Equal(t, 1, d.Ingestion.CrossSourceDuplicates)
	require.Len(t, d.Ingestion.Sources, 2)
	assert.Equal(t, "daily.csv", d.Ingestion.Sources[0].Name)
	assert.Equal(t, 1, d.Ingestion.Dropped["invalid_date"])
}

func TestDashboardCmd_Text(t *testing.T) {
	viper.Reset()
	daily, historical := ledgerFiles(t)

	out, err := execute(t, dashboardCmd(), "--daily", daily, "--historical", historical)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Revenue")
	assert.Contains(t, out, "₹1,700.00")
}

func TestDashboardCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	daily, _ := ledgerFiles(t)
	missingCols := writeFile(t, dir, "short.csv", "Bill ID,Date\n1,2024-05-01\n")
	pdf := writeFile(t, dir, "ledger.pdf", "%PDF")

	tests := []struct {
		name     string
		args     []string
		contains string
		userErr  bool
		is       error
	}{
		{
			name:     "unsupported format",
			args:     []string{"--daily", daily, "--format", "yaml"},
			contains: `unsupported format "yaml"`,
		},
		{
			name:     "missing daily",
			args:     []string{"--historical", daily},
			contains: "daily",
		},
		{
			name:    "missing columns",
			args:    []string{"--daily", missingCols},
			userErr: true,
			is:      common.ErrSchema,
		},
		{
			name:    "unsupported file type",
			args:    []string{"--daily", pdf},
			userErr: true,
			is:      common.ErrUnsupported,
		},
		{
			name:    "file does not exist",
			args:    []string{"--daily", filepath.Join(dir, "nope.csv")},
			userErr: true,
			is:      common.ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			_, err := execute(t, dashboardCmd(), tt.args...)
			require.Error(t, err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
			if tt.userErr {
				var userErr *common.UserError
				assert.True(t, errors.As(err, &userErr))
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestSchemaCmd(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	full, _ := ledgerFiles(t)
	partial := writeFile(t, dir, "partial.csv", "Bill ID,Date,Amount,Notes\n1,2024-05-01,10,hi\n")

	out, err := execute(t, schemaCmd(), full, partial)
	require.NoError(t, err)

	assert.Contains(t, out, "Schema: daily.csv")
	assert.Contains(t, out, "All required fields present")
	assert.Contains(t, out, "Schema: partial.csv")
	assert.Contains(t, out, "Missing required fields")
	assert.Contains(t, out, "Salesperson")
	assert.Contains(t, out, "passthrough")
}

func TestSchemaCmd_RequiresFile(t *testing.T) {
	viper.Reset()
	_, err := execute(t, schemaCmd())
	require.Error(t, err)
}

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}
}

func useMockWriter(t *testing.T) (*sheets.MockWriter, *sheets.Config) {
	t.Helper()
	mock := sheets.NewMockWriter()
	var got sheets.Config
	original := newDashboardWriter
	newDashboardWriter = func(_ context.Context, cfg sheets.Config) (dashboardWriter, error) {
		got = cfg
		return mock, nil
	}
	t.Cleanup(func() { newDashboardWriter = original })
	return mock, &got
}

func TestExportCmd(t *testing.T) {
	viper.Reset()
	clearSheetsEnv(t)
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/tmp/service-account.json")
	mock, cfg := useMockWriter(t)
	daily, historical := ledgerFiles(t)

	out, err := execute(t, exportCmd(), "--daily", daily, "--historical", historical, "--spreadsheet-id", "sheet-123")
	require.NoError(t, err)

	assert.Contains(t, out, "Exported 2 transactions")
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, "/tmp/service-account.json", cfg.ServiceAccountPath)

	calls := mock.GetWriteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Dashboard.KPIs.Transactions)
}

func TestExportCmd_WriteFailure(t *testing.T) {
	viper.Reset()
	clearSheetsEnv(t)
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/tmp/service-account.json")
	mock, _ := useMockWriter(t)
	mock.WriteFunc = func(context.Context, *report.Dashboard) error {
		return errors.New("quota exhausted")
	}
	daily, _ := ledgerFiles(t)

	_, err := execute(t, exportCmd(), "--daily", daily)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestExportCmd_NotConfigured(t *testing.T) {
	viper.Reset()
	clearSheetsEnv(t)
	mock, _ := useMockWriter(t)
	daily, _ := ledgerFiles(t)

	_, err := execute(t, exportCmd(), "--daily", daily)
	require.Error(t, err)

	var userErr *common.UserError
	require.True(t, errors.As(err, &userErr))
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Empty(t, mock.GetWriteCalls())
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, versionCmd())
	require.NoError(t, err)
	assert.Equal(t, "ledger version dev", strings.TrimSpace(out))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := configPath("sheets-token.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "ledger", "sheets-token.json"), path)
}

func TestRootCmd_Commands(t *testing.T) {
	viper.Reset()
	root := rootCmd()
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"dashboard", "schema", "export", "auth", "version"} {
		assert.Contains(t, names, want)
	}
}
