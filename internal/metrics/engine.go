// Package metrics computes revenue KPIs, monthly series and breakdowns over a
// canonical transaction table. Every function is total: an empty table yields
// zero values and empty slices.
package metrics

import (
	"sort"
	"time"

	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine computes metrics. It holds no table state and is safe for concurrent use.
type Engine struct {
	specialityThreshold decimal.Decimal
}

// NewEngine creates a metrics engine.
func NewEngine(cfg config.Metrics) *Engine {
	return &Engine{specialityThreshold: cfg.SpecialityThreshold}
}

// TotalRevenue sums Revenue over all rows.
func (e *Engine) TotalRevenue(t model.Table) decimal.Decimal {
	total := decimal.Zero
	for i := range t {
		total = total.Add(t[i].Revenue)
	}
	return total
}

// AverageTicketSize is TotalRevenue divided by the row count, or 0 for an empty table.
func (e *Engine) AverageTicketSize(t model.Table) decimal.Decimal {
	if len(t) == 0 {
		return decimal.Zero
	}
	return e.TotalRevenue(t).Div(decimal.NewFromInt(int64(len(t))))
}

// MonthlyRevenue sums Revenue per calendar month, oldest first.
func (e *Engine) MonthlyRevenue(t model.Table) []MonthlyAmount {
	return monthlySum(t, func(txn *model.Transaction) decimal.Decimal { return txn.Revenue })
}

// DiscountTrend sums Discount per calendar month, oldest first.
func (e *Engine) DiscountTrend(t model.Table) []MonthlyAmount {
	return monthlySum(t, func(txn *model.Transaction) decimal.Decimal { return txn.Discount })
}

// GrossVsNet sums Gross and Revenue per calendar month, oldest first.
func (e *Engine) GrossVsNet(t model.Table) []MonthlyGrossNet {
	idx := indexMonths(t)
	out := make([]MonthlyGrossNet, len(idx.months))
	for i, m := range idx.months {
		out[i] = MonthlyGrossNet{Month: m, Gross: decimal.Zero, Net: decimal.Zero}
	}
	for i := range t {
		row := &out[idx.pos[t[i].Month()]]
		row.Gross = row.Gross.Add(t[i].Gross)
		row.Net = row.Net.Add(t[i].Revenue)
	}
	return out
}

// SpecialityTests summarises rows whose Revenue is at or above the configured
// threshold. PercentOfTotal is 0 unless the grand total is positive.
func (e *Engine) SpecialityTests(t model.Table) SpecialityStats {
	stats := SpecialityStats{
		Threshold:      e.specialityThreshold,
		TotalRevenue:   decimal.Zero,
		PercentOfTotal: decimal.Zero,
	}
	for i := range t {
		if t[i].Revenue.GreaterThanOrEqual(e.specialityThreshold) {
			stats.Count++
			stats.TotalRevenue = stats.TotalRevenue.Add(t[i].Revenue)
		}
	}
	if grand := e.TotalRevenue(t); grand.IsPositive() {
		stats.PercentOfTotal = stats.TotalRevenue.Div(grand).Mul(hundred)
	}
	return stats
}

// ClientsAdded counts distinct PatientName values per month and overall.
// Rows without a patient name are ignored.
func (e *Engine) ClientsAdded(t model.Table) ClientStats {
	idx := indexMonths(t)
	perMonth := make([]map[string]struct{}, len(idx.months))
	all := make(map[string]struct{})

	for i := range t {
		name := t[i].PatientName
		if name == "" {
			continue
		}
		p := idx.pos[t[i].Month()]
		if perMonth[p] == nil {
			perMonth[p] = make(map[string]struct{})
		}
		perMonth[p][name] = struct{}{}
		all[name] = struct{}{}
	}

	stats := ClientStats{Monthly: make([]MonthlyCount, len(idx.months)), Total: len(all)}
	for i, m := range idx.months {
		stats.Monthly[i] = MonthlyCount{Month: m, Count: len(perMonth[i])}
	}
	return stats
}

// RevenueBy sums Revenue per value of the given dimension, largest first.
// Ties keep the order in which keys were first seen. Rows with an empty key
// are excluded.
func (e *Engine) RevenueBy(t model.Table, dim model.Dimension) []GroupAmount {
	pos := make(map[string]int)
	out := []GroupAmount{}
	for i := range t {
		key := t[i].Label(dim)
		if key == "" {
			continue
		}
		p, ok := pos[key]
		if !ok {
			p = len(out)
			pos[key] = p
			out = append(out, GroupAmount{Key: key, Amount: decimal.Zero})
		}
		out[p].Amount = out[p].Amount.Add(t[i].Revenue)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// TransactionsBy counts rows per value of the given dimension, largest first,
// with the same ordering and exclusion rules as RevenueBy.
func (e *Engine) TransactionsBy(t model.Table, dim model.Dimension) []GroupCount {
	pos := make(map[string]int)
	out := []GroupCount{}
	for i := range t {
		key := t[i].Label(dim)
		if key == "" {
			continue
		}
		p, ok := pos[key]
		if !ok {
			p = len(out)
			pos[key] = p
			out = append(out, GroupCount{Key: key})
		}
		out[p].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// RevenueBySalesperson is RevenueBy(t, Salesperson).
func (e *Engine) RevenueBySalesperson(t model.Table) []GroupAmount {
	return e.RevenueBy(t, model.DimensionSalesperson)
}

// TransactionsBySalesperson is TransactionsBy(t, Salesperson).
func (e *Engine) TransactionsBySalesperson(t model.Table) []GroupCount {
	return e.TransactionsBy(t, model.DimensionSalesperson)
}

// ReferralAnalysis is RevenueBy(t, Referral).
func (e *Engine) ReferralAnalysis(t model.Table) []GroupAmount {
	return e.RevenueBy(t, model.DimensionReferral)
}

// OrganisationRevenue is RevenueBy(t, Organisation).
func (e *Engine) OrganisationRevenue(t model.Table) []GroupAmount {
	return e.RevenueBy(t, model.DimensionOrganisation)
}

// MarketingImpact breaks revenue down by marketing organisation and by
// marketing referral.
func (e *Engine) MarketingImpact(t model.Table) MarketingImpact {
	return MarketingImpact{
		ByOrganisation: e.RevenueBy(t, model.DimensionMarketingOrg),
		ByReferral:     e.RevenueBy(t, model.DimensionMarketingReferral),
	}
}

// OrgVsReferralRevenue totals the OrgRevenue and ReferralRevenue columns.
func (e *Engine) OrgVsReferralRevenue(t model.Table) RevenueSplit {
	split := RevenueSplit{Organisation: decimal.Zero, Referral: decimal.Zero}
	for i := range t {
		split.Organisation = split.Organisation.Add(t[i].OrgRevenue)
		split.Referral = split.Referral.Add(t[i].ReferralRevenue)
	}
	return split
}

// monthIndex is the sorted set of months present in a table.
type monthIndex struct {
	pos    map[time.Time]int
	months []time.Time
}

func indexMonths(t model.Table) monthIndex {
	seen := make(map[time.Time]struct{})
	months := []time.Time{}
	for i := range t {
		m := t[i].Month()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	pos := make(map[time.Time]int, len(months))
	for i, m := range months {
		pos[m] = i
	}
	return monthIndex{months: months, pos: pos}
}

func monthlySum(t model.Table, value func(*model.Transaction) decimal.Decimal) []MonthlyAmount {
	idx := indexMonths(t)
	out := make([]MonthlyAmount, len(idx.months))
	for i, m := range idx.months {
		out[i] = MonthlyAmount{Month: m, Amount: decimal.Zero}
	}
	for i := range t {
		row := &out[idx.pos[t[i].Month()]]
		row.Amount = row.Amount.Add(value(&t[i]))
	}
	return out
}
