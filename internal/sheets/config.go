// Package sheets exports dashboards to Google Sheets.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/spf13/viper"
)

// DefaultSpreadsheetName is the title used when a new spreadsheet is created.
const DefaultSpreadsheetName = "Sales Dashboard"

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	CurrencyPattern    string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		EnableFormatting: true,
		TimeZone:         "Asia/Kolkata",
		CurrencyPattern:  "₹#,##0.00",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// LoadConfig reads the sheets.* keys from v, falling back to GOOGLE_SHEETS_*
// environment variables for anything unset, and validates the result.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		cfg.ServiceAccountPath = config.ExpandPath(s)
	}
	if s := v.GetString("sheets.client_id"); s != "" {
		cfg.ClientID = s
	}
	if s := v.GetString("sheets.client_secret"); s != "" {
		cfg.ClientSecret = s
	}
	if s := v.GetString("sheets.refresh_token"); s != "" {
		cfg.RefreshToken = s
	}
	if s := v.GetString("sheets.spreadsheet_id"); s != "" {
		cfg.SpreadsheetID = s
	}
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		cfg.SpreadsheetName = s
	}
	if s := v.GetString("sheets.time_zone"); s != "" {
		cfg.TimeZone = s
	}
	if s := v.GetString("sheets.currency_pattern"); s != "" {
		cfg.CurrencyPattern = s
	}
	if v.IsSet("sheets.enable_formatting") {
		cfg.EnableFormatting = v.GetBool("sheets.enable_formatting")
	}

	if cfg.ServiceAccountPath == "" {
		cfg.ServiceAccountPath = config.ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if cfg.SpreadsheetName == DefaultSpreadsheetName {
		if s := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); s != "" {
			cfg.SpreadsheetName = s
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	if c.CurrencyPattern == "" {
		return fmt.Errorf("%w: currency pattern cannot be empty", common.ErrInvalidConfig)
	}
	return nil
}
