package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/shopspring/decimal"
)

// DropReason names why a row was filtered out while cleaning.
type DropReason string

// Row-level filters applied by the cleaner.
const (
	DropInvalidDate DropReason = "invalid_date"
	DropMissingID   DropReason = "missing_invoice_id"
)

// cancelCheckInterval is how many rows are cleaned between context checks.
const cancelCheckInterval = 1024

// maxExponent bounds the decimal exponent accepted from a cell. Anything
// outside it is treated as unparseable.
const maxExponent = 30

// missingMarkers are cell values treated the same as an empty cell.
var missingMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"n/a":  true,
	"na":   true,
	"#n/a": true,
	"<na>": true,
}

// numberReplacer strips thousands separators and currency markers.
var numberReplacer = strings.NewReplacer(",", "", "₹", "", "$", "", "Rs.", "", "INR", "", " ", "", "\u00a0", "")

// CleanResult is the output of cleaning one normalized table.
type CleanResult struct {
	Dropped map[DropReason]int
	Table   model.Table
	Read    int
}

// DroppedTotal returns the number of rows removed for any reason.
func (r CleanResult) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Cleaner coerces normalized rows into canonical transactions.
type Cleaner struct {
	numeric map[string]decimal.Decimal
	logger  *slog.Logger
	layouts []string
}

// NewCleaner creates a cleaner using the date layouts and numeric defaults from cfg.
func NewCleaner(cfg config.Ingest, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		layouts: cfg.DateLayouts,
		numeric: cfg.NumericDefaults,
		logger:  common.LoggerOrDefault(logger),
	}
}

// Clean converts every row of nt into a Transaction. Rows whose InvoiceDate
// cannot be parsed, or whose InvoiceID is missing, are dropped and counted.
// The only error returned is the context's.
func (c *Cleaner) Clean(ctx context.Context, nt *NormalizedTable) (CleanResult, error) {
	result := CleanResult{
		Table:   make(model.Table, 0, len(nt.Rows)),
		Dropped: make(map[DropReason]int),
		Read:    len(nt.Rows),
	}

	for i, row := range nt.Rows {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		date, ok := c.parseDate(row[model.FieldInvoiceDate])
		if !ok {
			result.Dropped[DropInvalidDate]++
			continue
		}

		id := CanonicalID(row[model.FieldInvoiceID])
		if id == "" {
			result.Dropped[DropMissingID]++
			continue
		}

		result.Table = append(result.Table, c.toTransaction(nt, row, id, date))
	}

	if dropped := result.DroppedTotal(); dropped > 0 {
		c.logger.Debug("Dropped rows while cleaning",
			"source", nt.Source,
			"invalid_date", result.Dropped[DropInvalidDate],
			"missing_invoice_id", result.Dropped[DropMissingID])
	}

	return result, nil
}

func (c *Cleaner) toTransaction(nt *NormalizedTable, row model.Record, id string, date time.Time) model.Transaction {
	txn := model.Transaction{
		InvoiceID:         id,
		InvoiceDate:       date,
		Salesperson:       text(row[model.FieldSalesperson]),
		PatientName:       text(row[model.FieldPatientName]),
		Organisation:      text(row[model.FieldOrganisation]),
		Referral:          text(row[model.FieldReferral]),
		MarketingOrg:      text(row[model.FieldMarketingOrg]),
		MarketingReferral: text(row[model.FieldMarketingReferral]),
		Revenue:           c.number(row, model.FieldRevenue),
		Gross:             c.number(row, model.FieldGross),
		Discount:          c.number(row, model.FieldDiscount),
		OrgRevenue:        c.number(row, model.FieldOrgRevenue),
		ReferralRevenue:   c.number(row, model.FieldReferralRevenue),
		Source:            nt.Source,
	}

	for _, col := range nt.Columns {
		if model.IsCanonicalField(col) {
			continue
		}
		if txn.Extra == nil {
			txn.Extra = make(map[string]string)
		}
		txn.Extra[col] = row[col]
	}

	return txn
}

func (c *Cleaner) parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return time.Time{}, false
	}
	for _, layout := range c.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// number parses a numeric field, falling back to its configured default.
func (c *Cleaner) number(row model.Record, field string) decimal.Decimal {
	if d, ok := ParseAmount(row[field]); ok {
		return d
	}
	return c.numeric[field]
}

// ParseAmount parses a currency amount, tolerating thousands separators,
// currency markers and accounting-style parentheses for negatives.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	d, err := decimal.NewFromString(numberReplacer.Replace(s))
	if err != nil || !saneExponent(d) {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// CanonicalID returns the canonical string form of an invoice identifier.
// Float renderings of whole numbers (1001.0, 1.001e3) collapse to 1001 so the
// same invoice compares equal across export formats. Plain strings, including
// ones with leading zeros, are only trimmed. Missing values yield "".
func CanonicalID(raw string) string {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return ""
	}
	if !strings.ContainsAny(s, ".eE") {
		return s
	}

	d, err := decimal.NewFromString(s)
	if err != nil || !saneExponent(d) {
		return s
	}
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return s
}

func saneExponent(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent
}

func text(raw string) string {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return ""
	}
	return s
}

func isMissing(s string) bool {
	return missingMarkers[strings.ToLower(s)]
}
