// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical field names. Source headers are mapped onto these by the alias table.
const (
	FieldInvoiceID         = "InvoiceID"
	FieldInvoiceDate       = "InvoiceDate"
	FieldSalesperson       = "Salesperson"
	FieldRevenue           = "Revenue"
	FieldGross             = "Gross"
	FieldDiscount          = "Discount"
	FieldOrgRevenue        = "OrgRevenue"
	FieldReferralRevenue   = "ReferralRevenue"
	FieldPatientName       = "PatientName"
	FieldOrganisation      = "Organisation"
	FieldReferral          = "Referral"
	FieldMarketingOrg      = "MarketingOrg"
	FieldMarketingReferral = "MarketingReferral"
)

// CanonicalFields lists every field a Transaction carries, in display order.
var CanonicalFields = []string{
	FieldInvoiceID,
	FieldInvoiceDate,
	FieldSalesperson,
	FieldRevenue,
	FieldGross,
	FieldDiscount,
	FieldOrgRevenue,
	FieldReferralRevenue,
	FieldPatientName,
	FieldOrganisation,
	FieldReferral,
	FieldMarketingOrg,
	FieldMarketingReferral,
}

// IsCanonicalField reports whether name is one of the fixed transaction fields.
func IsCanonicalField(name string) bool {
	for _, f := range CanonicalFields {
		if f == name {
			return true
		}
	}
	return false
}

// Transaction is one normalized, validated invoice line.
type Transaction struct {
	InvoiceDate       time.Time
	Revenue           decimal.Decimal
	Gross             decimal.Decimal
	Discount          decimal.Decimal
	OrgRevenue        decimal.Decimal
	ReferralRevenue   decimal.Decimal
	Extra             map[string]string // Unmapped source columns, kept verbatim
	InvoiceID         string
	Salesperson       string
	PatientName       string
	Organisation      string
	Referral          string
	MarketingOrg      string
	MarketingReferral string
	Source            string // Name of the source the row was loaded from
}

// Month returns the first instant of the calendar month the invoice falls in.
func (t *Transaction) Month() time.Time {
	return MonthOf(t.InvoiceDate)
}

// Label returns the value of the given dimension for this transaction.
func (t *Transaction) Label(d Dimension) string {
	switch d {
	case DimensionSalesperson:
		return t.Salesperson
	case DimensionReferral:
		return t.Referral
	case DimensionOrganisation:
		return t.Organisation
	case DimensionMarketingOrg:
		return t.MarketingOrg
	case DimensionMarketingReferral:
		return t.MarketingReferral
	default:
		return ""
	}
}

// Table is the canonical transaction table. Consumers treat it as read-only.
type Table []Transaction

// Clone returns a deep copy of the table, including passthrough maps.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, txn := range t {
		out[i] = txn
		if txn.Extra != nil {
			extra := make(map[string]string, len(txn.Extra))
			for k, v := range txn.Extra {
				extra[k] = v
			}
			out[i].Extra = extra
		}
	}
	return out
}

// DateRange returns the earliest and latest invoice dates in the table.
// Both are zero for an empty table.
func (t Table) DateRange() (time.Time, time.Time) {
	var start, end time.Time
	for i, txn := range t {
		if i == 0 || txn.InvoiceDate.Before(start) {
			start = txn.InvoiceDate
		}
		if i == 0 || txn.InvoiceDate.After(end) {
			end = txn.InvoiceDate
		}
	}
	return start, end
}
