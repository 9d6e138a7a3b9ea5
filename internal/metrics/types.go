package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyAmount is a money total for one calendar month.
type MonthlyAmount struct {
	Month  time.Time       `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyCount is a count for one calendar month.
type MonthlyCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

// MonthlyGrossNet pairs gross billing with net revenue for one month.
type MonthlyGrossNet struct {
	Month time.Time       `json:"month"`
	Gross decimal.Decimal `json:"gross"`
	Net   decimal.Decimal `json:"net"`
}

// GroupAmount is a revenue total for one dimension value.
type GroupAmount struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupCount is a transaction count for one dimension value.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// SpecialityStats summarises high-value (speciality) tests.
type SpecialityStats struct {
	Threshold      decimal.Decimal `json:"threshold"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	PercentOfTotal decimal.Decimal `json:"percent_of_total"`
	Count          int             `json:"count"`
}

// ClientStats counts distinct patients per month and over the whole table.
type ClientStats struct {
	Monthly []MonthlyCount `json:"monthly"`
	Total   int            `json:"total"`
}

// MarketingImpact breaks revenue down by both marketing attributions.
type MarketingImpact struct {
	ByOrganisation []GroupAmount `json:"by_organisation"`
	ByReferral     []GroupAmount `json:"by_referral"`
}

// RevenueSplit totals the organisation and referral revenue columns.
type RevenueSplit struct {
	Organisation decimal.Decimal `json:"organisation"`
	Referral     decimal.Decimal `json:"referral"`
}
