// Package testutil provides fixtures for building transaction tables in tests.
//
// Example:
//
//	table := testutil.NewTableBuilder(t).
//		Add("1001", "2024-01-05", 500).Salesperson("Asha").Patient("Ravi").
//		Add("1002", "2024-02-11", 1200).Salesperson("Ben").
//		Build()
package testutil

import (
	"testing"
	"time"

	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/shopspring/decimal"
)

// TableBuilder provides a fluent interface for constructing transaction tables.
// Setter methods apply to the most recently added transaction.
type TableBuilder struct {
	t     *testing.T
	table model.Table
}

// NewTableBuilder creates an empty builder.
func NewTableBuilder(t *testing.T) *TableBuilder {
	t.Helper()
	return &TableBuilder{t: t}
}

// Add appends a transaction with the given id, date (YYYY-MM-DD) and revenue.
// Gross defaults to the revenue.
func (b *TableBuilder) Add(id, date string, revenue float64) *TableBuilder {
	b.t.Helper()
	rev := decimal.NewFromFloat(revenue)
	b.table = append(b.table, model.Transaction{
		InvoiceID:   id,
		InvoiceDate: Date(b.t, date),
		Revenue:     rev,
		Gross:       rev,
		Source:      "test.csv",
	})
	return b
}

// Salesperson sets the salesperson of the last transaction.
func (b *TableBuilder) Salesperson(name string) *TableBuilder {
	b.last().Salesperson = name
	return b
}

// Patient sets the patient name of the last transaction.
func (b *TableBuilder) Patient(name string) *TableBuilder {
	b.last().PatientName = name
	return b
}

// Organisation sets the organisation of the last transaction.
func (b *TableBuilder) Organisation(name string) *TableBuilder {
	b.last().Organisation = name
	return b
}

// Referral sets the referral of the last transaction.
func (b *TableBuilder) Referral(name string) *TableBuilder {
	b.last().Referral = name
	return b
}

// Marketing sets both marketing attributions of the last transaction.
func (b *TableBuilder) Marketing(org, referral string) *TableBuilder {
	txn := b.last()
	txn.MarketingOrg = org
	txn.MarketingReferral = referral
	return b
}

// Amounts sets the gross, discount, organisation and referral amounts of the
// last transaction.
func (b *TableBuilder) Amounts(gross, discount, orgRevenue, referralRevenue float64) *TableBuilder {
	txn := b.last()
	txn.Gross = decimal.NewFromFloat(gross)
	txn.Discount = decimal.NewFromFloat(discount)
	txn.OrgRevenue = decimal.NewFromFloat(orgRevenue)
	txn.ReferralRevenue = decimal.NewFromFloat(referralRevenue)
	return b
}

// Source sets the source name of the last transaction.
func (b *TableBuilder) Source(name string) *TableBuilder {
	b.last().Source = name
	return b
}

// Build returns the constructed table.
func (b *TableBuilder) Build() model.Table {
	return b.table
}

func (b *TableBuilder) last() *model.Transaction {
	b.t.Helper()
	if len(b.table) == 0 {
		b.t.Fatal("testutil: setter called before Add")
	}
	return &b.table[len(b.table)-1]
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", s, err)
	}
	return d
}

// Month returns the first day of the given month.
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyRevenueTable builds one transaction on the first of each consecutive
// month starting at start, carrying the given revenues.
func MonthlyRevenueTable(t *testing.T, start time.Time, revenues ...float64) model.Table {
	t.Helper()
	b := NewTableBuilder(t)
	for i, rev := range revenues {
		day := start.AddDate(0, i, 0)
		b.Add(day.Format("2006-01")+"-inv", day.Format("2006-01-02"), rev)
	}
	return b.Build()
}
