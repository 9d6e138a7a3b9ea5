// Package config loads and validates the ingestion, metric and anomaly settings.
package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the explicit configuration handed to the ingestion pipeline and
// the metrics and anomaly engines.
type Config struct {
	Ingest  Ingest
	Metrics Metrics
	Anomaly Anomaly
}

// Ingest configures how source files become canonical transactions.
type Ingest struct {
	Aliases         map[string]string          // Accepted source header -> canonical field
	NumericDefaults map[string]decimal.Decimal // Canonical numeric field -> fallback value
	Required        []string
	DateLayouts     []string
	Timeout         time.Duration
}

// Metrics configures the metrics engine.
type Metrics struct {
	SpecialityThreshold decimal.Decimal
}

// Anomaly configures rolling anomaly detection and forecasting.
type Anomaly struct {
	Window     int
	Deviations float64
	// ForecastAlpha is an exponential smoothing factor. The run-rate forecast
	// does not apply it.
	ForecastAlpha float64
}

// AliasEntry is one header alias as written in the config file.
type AliasEntry struct {
	Header string `mapstructure:"header"`
	Field  string `mapstructure:"field"`
}

// NumericDefaultEntry is one numeric default as written in the config file.
type NumericDefaultEntry struct {
	Field   string  `mapstructure:"field"`
	Default float64 `mapstructure:"default"`
}

// DefaultAliases returns the built-in header alias table.
func DefaultAliases() map[string]string {
	return map[string]string{
		"InvoiceDate":                    model.FieldInvoiceDate,
		"TransactionDate":                model.FieldInvoiceDate,
		"Date":                           model.FieldInvoiceDate,
		"Salesperson":                    model.FieldSalesperson,
		"Agent":                          model.FieldSalesperson,
		"Amount":                         model.FieldRevenue,
		"Total":                          model.FieldRevenue,
		"Bill ID":                        model.FieldInvoiceID,
		"Patient Name":                   model.FieldPatientName,
		"Organisation Revenue Amount":    model.FieldOrgRevenue,
		"Referral Revenue Amount":        model.FieldReferralRevenue,
		"Discount":                       model.FieldDiscount,
		"Gross":                          model.FieldGross,
		"Organisation":                   model.FieldOrganisation,
		"Referral":                       model.FieldReferral,
		"Marketing Person(Referral)":     model.FieldMarketingReferral,
		"Marketing Person(Organisation)": model.FieldMarketingOrg,
	}
}

// DefaultRequired returns the canonical fields every source must provide.
func DefaultRequired() []string {
	return []string{
		model.FieldInvoiceDate,
		model.FieldInvoiceID,
		model.FieldSalesperson,
		model.FieldRevenue,
		model.FieldOrgRevenue,
		model.FieldReferralRevenue,
		model.FieldPatientName,
		model.FieldDiscount,
		model.FieldGross,
		model.FieldOrganisation,
		model.FieldReferral,
	}
}

// DefaultNumericDefaults returns the fallback for each numeric field.
func DefaultNumericDefaults() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		model.FieldRevenue:         decimal.Zero,
		model.FieldOrgRevenue:      decimal.Zero,
		model.FieldReferralRevenue: decimal.Zero,
		model.FieldDiscount:        decimal.Zero,
		model.FieldGross:           decimal.Zero,
	}
}

// DefaultDateLayouts returns the accepted InvoiceDate layouts, tried in order.
func DefaultDateLayouts() []string {
	return []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
		"1/2/2006",
		"1/2/06",
		"01-02-06",
		"02-Jan-2006",
		"02 Jan 2006",
		"Jan 2, 2006",
		"January 2, 2006",
	}
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Ingest: Ingest{
			Aliases:         DefaultAliases(),
			Required:        DefaultRequired(),
			NumericDefaults: DefaultNumericDefaults(),
			DateLayouts:     DefaultDateLayouts(),
			Timeout:         2 * time.Minute,
		},
		Metrics: Metrics{
			SpecialityThreshold: decimal.NewFromInt(999),
		},
		Anomaly: Anomaly{
			Window:        3,
			Deviations:    2,
			ForecastAlpha: 0.3,
		},
	}
}

// Load builds a Config from defaults overlaid with values found in v.
// Aliases and numeric defaults from v extend the built-in tables.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v.IsSet("ingest.aliases") {
		var entries []AliasEntry
		if err := v.UnmarshalKey("ingest.aliases", &entries); err != nil {
			return cfg, fmt.Errorf("failed to read ingest.aliases: %w", err)
		}
		for _, e := range entries {
			cfg.Ingest.Aliases[e.Header] = e.Field
		}
	}
	if v.IsSet("ingest.numeric_defaults") {
		var entries []NumericDefaultEntry
		if err := v.UnmarshalKey("ingest.numeric_defaults", &entries); err != nil {
			return cfg, fmt.Errorf("failed to read ingest.numeric_defaults: %w", err)
		}
		for _, e := range entries {
			cfg.Ingest.NumericDefaults[e.Field] = decimal.NewFromFloat(e.Default)
		}
	}
	if v.IsSet("ingest.required") {
		cfg.Ingest.Required = v.GetStringSlice("ingest.required")
	}
	if v.IsSet("ingest.date_layouts") {
		cfg.Ingest.DateLayouts = v.GetStringSlice("ingest.date_layouts")
	}
	if v.IsSet("ingest.timeout") {
		cfg.Ingest.Timeout = v.GetDuration("ingest.timeout")
	}
	if v.IsSet("metrics.speciality_threshold") {
		threshold, err := decimal.NewFromString(v.GetString("metrics.speciality_threshold"))
		if err != nil {
			return cfg, fmt.Errorf("invalid metrics.speciality_threshold: %w", err)
		}
		cfg.Metrics.SpecialityThreshold = threshold
	}
	if v.IsSet("anomaly.window") {
		cfg.Anomaly.Window = v.GetInt("anomaly.window")
	}
	if v.IsSet("anomaly.deviations") {
		cfg.Anomaly.Deviations = v.GetFloat64("anomaly.deviations")
	}
	if v.IsSet("anomaly.forecast_alpha") {
		cfg.Anomaly.ForecastAlpha = v.GetFloat64("anomaly.forecast_alpha")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Ingest.Required) == 0 {
		return fmt.Errorf("%w: required field list is empty", common.ErrInvalidConfig)
	}
	for _, f := range c.Ingest.Required {
		if !model.IsCanonicalField(f) {
			return fmt.Errorf("%w: unknown required field %q", common.ErrInvalidConfig, f)
		}
	}
	if !contains(c.Ingest.Required, model.FieldInvoiceID) || !contains(c.Ingest.Required, model.FieldInvoiceDate) {
		return fmt.Errorf("%w: %s and %s must be required", common.ErrInvalidConfig, model.FieldInvoiceID, model.FieldInvoiceDate)
	}

	headers := make([]string, 0, len(c.Ingest.Aliases))
	for h := range c.Ingest.Aliases {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	for _, h := range headers {
		if !model.IsCanonicalField(c.Ingest.Aliases[h]) {
			return fmt.Errorf("%w: alias %q targets unknown field %q", common.ErrInvalidConfig, h, c.Ingest.Aliases[h])
		}
	}

	for f := range c.Ingest.NumericDefaults {
		if !isNumericField(f) {
			return fmt.Errorf("%w: %q is not a numeric field", common.ErrInvalidConfig, f)
		}
	}
	if len(c.Ingest.DateLayouts) == 0 {
		return fmt.Errorf("%w: no date layouts configured", common.ErrInvalidConfig)
	}
	if c.Ingest.Timeout < 0 {
		return fmt.Errorf("%w: ingest timeout cannot be negative", common.ErrInvalidConfig)
	}

	if c.Anomaly.Window < 1 {
		return fmt.Errorf("%w: rolling window must be at least 1", common.ErrInvalidConfig)
	}
	if c.Anomaly.Deviations <= 0 {
		return fmt.Errorf("%w: anomaly deviations must be positive", common.ErrInvalidConfig)
	}
	if c.Anomaly.ForecastAlpha <= 0 || c.Anomaly.ForecastAlpha > 1 {
		return fmt.Errorf("%w: forecast alpha must be in (0, 1]", common.ErrInvalidConfig)
	}

	return nil
}

func isNumericField(f string) bool {
	switch f {
	case model.FieldRevenue, model.FieldGross, model.FieldDiscount, model.FieldOrgRevenue, model.FieldReferralRevenue:
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
