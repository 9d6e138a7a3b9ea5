package report

import (
	"github.com/Veraticus/ledgerflow/internal/anomaly"
	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/Veraticus/ledgerflow/internal/metrics"
)

// Builder runs the metrics and anomaly engines over an ingestion result.
type Builder struct {
	metrics *metrics.Engine
	anomaly *anomaly.Engine
}

// NewBuilder creates a dashboard builder.
func NewBuilder(m *metrics.Engine, a *anomaly.Engine) *Builder {
	return &Builder{metrics: m, anomaly: a}
}

// Build computes every dashboard figure once. The transaction table in res is
// only read.
func (b *Builder) Build(res *ingest.Result) *Dashboard {
	table := res.Transactions
	m := b.metrics

	start, end := table.DateRange()
	clients := m.ClientsAdded(table)
	anomalies := b.anomaly.Detect(table)
	forecast := b.anomaly.Forecast(table)

	return &Dashboard{
		GeneratedAt: forecast.AsOf,
		Period:      Period{Start: start, End: end},
		KPIs: KPIs{
			TotalRevenue:      m.TotalRevenue(table),
			AverageTicketSize: m.AverageTicketSize(table),
			Transactions:      len(table),
			Clients:           clients.Total,
		},
		Speciality: m.SpecialityTests(table),
		Series: Series{
			Revenue:    m.MonthlyRevenue(table),
			Discounts:  m.DiscountTrend(table),
			GrossVsNet: m.GrossVsNet(table),
			Clients:    clients.Monthly,
		},
		Breakdowns: Breakdowns{
			RevenueBySalesperson:      m.RevenueBySalesperson(table),
			TransactionsBySalesperson: m.TransactionsBySalesperson(table),
			Referrals:                 m.ReferralAnalysis(table),
			Organisations:             m.OrganisationRevenue(table),
			Marketing:                 m.MarketingImpact(table),
			RevenueSplit:              m.OrgVsReferralRevenue(table),
		},
		Anomalies: anomalies,
		Forecast:  forecast,
		Alerts:    b.anomaly.Alerts(anomalies),
		Ingestion: res,
	}
}
