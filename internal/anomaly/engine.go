// Package anomaly flags unusual months in the revenue series and projects the
// current month's revenue from its run rate.
package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/ledgerflow/internal/clock"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/metrics"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/shopspring/decimal"
)

// AlertMonthLayout is how months are named in alert messages.
const AlertMonthLayout = "January 2006"

// MonthlyAnomaly is one row of the anomaly table.
type MonthlyAnomaly struct {
	Month       time.Time       `json:"month"`
	Revenue     decimal.Decimal `json:"revenue"`
	RollingMean decimal.Decimal `json:"rolling_mean"`
	RollingStd  decimal.Decimal `json:"rolling_std"`
	Anomaly     bool            `json:"anomaly"`
}

// Forecast is a linear run-rate projection of the current month's revenue.
type Forecast struct {
	AsOf        time.Time       `json:"as_of"`
	MonthToDate decimal.Decimal `json:"month_to_date"`
	Projected   decimal.Decimal `json:"projected"`
	Day         int             `json:"day"`
	DaysInMonth int             `json:"days_in_month"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock that decides which month is current.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// Engine detects anomalies and computes forecasts. It never returns errors;
// an empty table yields an empty anomaly table and a zero forecast.
type Engine struct {
	clock      clock.Clock
	metrics    *metrics.Engine
	window     int
	deviations decimal.Decimal
}

// NewEngine creates an anomaly engine.
func NewEngine(cfg config.Anomaly, opts ...Option) *Engine {
	e := &Engine{
		clock:      clock.NewReal(),
		metrics:    metrics.NewEngine(config.Metrics{}),
		window:     cfg.Window,
		deviations: decimal.NewFromFloat(cfg.Deviations),
	}
	if e.window < 1 {
		e.window = 1
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect builds the anomaly table over the monthly revenue series.
//
// The baseline for each month is the trailing window of up to W months that
// precede it, expanding for the earliest months. The first month has no
// history and is its own baseline. A month is anomalous when its revenue is
// further than Deviations sample standard deviations from the baseline mean;
// with a zero deviation any difference from the mean is anomalous.
//
// Because the month under test is not part of its own baseline, the second
// month of a series is compared against a single point with zero deviation,
// so any change from the first month flags it. Steady growth such as
// 100, 200, 300, 400 flags months two and three.
func (e *Engine) Detect(t model.Table) []MonthlyAnomaly {
	series := e.metrics.MonthlyRevenue(t)
	out := make([]MonthlyAnomaly, len(series))

	for i, m := range series {
		start := max(i-e.window, 0)
		baseline := series[start:i]
		if i == 0 {
			baseline = series[:1]
		}

		mean, std := meanStd(baseline)
		out[i] = MonthlyAnomaly{
			Month:       m.Month,
			Revenue:     m.Amount,
			RollingMean: mean,
			RollingStd:  std,
			Anomaly:     m.Amount.Sub(mean).Abs().GreaterThan(e.deviations.Mul(std)),
		}
	}
	return out
}

// Forecast projects month-end revenue from the month-to-date total of the
// clock's current month: MTD / day * days-in-month.
func (e *Engine) Forecast(t model.Table) Forecast {
	now := e.clock.Now()
	f := Forecast{
		AsOf:        now,
		Day:         now.Day(),
		DaysInMonth: model.DaysInMonth(now),
		MonthToDate: decimal.Zero,
		Projected:   decimal.Zero,
	}

	rows := 0
	for i := range t {
		if model.SameMonth(t[i].InvoiceDate, now) {
			f.MonthToDate = f.MonthToDate.Add(t[i].Revenue)
			rows++
		}
	}
	if f.Day <= 0 || rows == 0 {
		return f
	}

	f.Projected = f.MonthToDate.
		Div(decimal.NewFromInt(int64(f.Day))).
		Mul(decimal.NewFromInt(int64(f.DaysInMonth)))
	return f
}

// Alerts returns one message per anomalous month, in table order.
func (e *Engine) Alerts(rows []MonthlyAnomaly) []string {
	alerts := []string{}
	for _, r := range rows {
		if !r.Anomaly {
			continue
		}
		alerts = append(alerts, fmt.Sprintf("Anomaly detected for %s: Revenue %s deviates from rolling average %s",
			r.Month.Format(AlertMonthLayout), r.Revenue.StringFixed(2), r.RollingMean.StringFixed(2)))
	}
	return alerts
}

// meanStd returns the mean and sample standard deviation of the window.
// A window of one value has a standard deviation of zero.
func meanStd(window []metrics.MonthlyAmount) (decimal.Decimal, decimal.Decimal) {
	if len(window) == 0 {
		return decimal.Zero, decimal.Zero
	}

	n := decimal.NewFromInt(int64(len(window)))
	sum := decimal.Zero
	for _, w := range window {
		sum = sum.Add(w.Amount)
	}
	mean := sum.Div(n)
	if len(window) == 1 {
		return mean, decimal.Zero
	}

	sq := decimal.Zero
	for _, w := range window {
		d := w.Amount.Sub(mean)
		sq = sq.Add(d.Mul(d))
	}
	variance := sq.Div(n.Sub(decimal.NewFromInt(1))).InexactFloat64()
	return mean, decimal.NewFromFloat(math.Sqrt(variance))
}
