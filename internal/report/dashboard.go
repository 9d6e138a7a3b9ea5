// Package report assembles every metric for one ingestion run into a single
// dashboard value that presenters render without recomputing anything.
package report

import (
	"time"

	"github.com/Veraticus/ledgerflow/internal/anomaly"
	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/Veraticus/ledgerflow/internal/metrics"
	"github.com/shopspring/decimal"
)

// KPIs are the headline figures of the dashboard.
type KPIs struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageTicketSize decimal.Decimal `json:"average_ticket_size"`
	Transactions      int             `json:"transactions"`
	Clients           int             `json:"clients"`
}

// Period is the span of invoice dates covered by the dashboard.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Breakdowns holds the per-dimension revenue and count tables.
type Breakdowns struct {
	RevenueBySalesperson      []metrics.GroupAmount   `json:"revenue_by_salesperson"`
	TransactionsBySalesperson []metrics.GroupCount    `json:"transactions_by_salesperson"`
	Referrals                 []metrics.GroupAmount   `json:"referrals"`
	Organisations             []metrics.GroupAmount   `json:"organisations"`
	Marketing                 metrics.MarketingImpact `json:"marketing"`
	RevenueSplit              metrics.RevenueSplit    `json:"revenue_split"`
}

// Series holds the monthly time series.
type Series struct {
	Revenue    []metrics.MonthlyAmount   `json:"revenue"`
	Discounts  []metrics.MonthlyAmount   `json:"discounts"`
	GrossVsNet []metrics.MonthlyGrossNet `json:"gross_vs_net"`
	Clients    []metrics.MonthlyCount    `json:"clients"`
}

// Dashboard is the full result of one run.
type Dashboard struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Period      Period                   `json:"period"`
	KPIs        KPIs                     `json:"kpis"`
	Speciality  metrics.SpecialityStats  `json:"speciality"`
	Series      Series                   `json:"series"`
	Breakdowns  Breakdowns               `json:"breakdowns"`
	Anomalies   []anomaly.MonthlyAnomaly `json:"anomalies"`
	Forecast    anomaly.Forecast         `json:"forecast"`
	Alerts      []string                 `json:"alerts"`
	Ingestion   *ingest.Result           `json:"ingestion"`
}

// HasData reports whether any transaction survived ingestion.
func (d *Dashboard) HasData() bool {
	return d.KPIs.Transactions > 0
}
