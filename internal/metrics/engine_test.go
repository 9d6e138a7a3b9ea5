package metrics

import (
	"testing"
	"time"

	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/Veraticus/ledgerflow/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(config.Default().Metrics)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleTable(t *testing.T) model.Table {
	t.Helper()
	return testutil.NewTableBuilder(t).
		Add("1", "2024-01-05", 500).Salesperson("Asha").Patient("Ravi").Referral("Dr. Rao").Organisation("City Lab").
		Amounts(550, 50, 300, 200).
		Add("2", "2024-01-20", 1200).Salesperson("Ben").Patient("Mira").Referral("Dr. Rao").
		Amounts(1300, 100, 700, 500).Marketing("Org Team", "Ref Team").
		Add("3", "2024-02-03", 300).Salesperson("Asha").Patient("Ravi").Organisation("City Lab").
		Add("4", "2024-02-17", 999).Salesperson("Chen").Marketing("Org Team", "").
		Build()
}

func TestEngine_TotalsAndAverage(t *testing.T) {
	e := newTestEngine()
	table := sampleTable(t)

	assert.True(t, e.TotalRevenue(table).Equal(dec("2999")))
	assert.True(t, e.AverageTicketSize(table).Equal(dec("749.75")))
}

func TestEngine_EmptyTable(t *testing.T) {
	e := newTestEngine()
	var empty model.Table

	assert.True(t, e.TotalRevenue(empty).IsZero())
	assert.True(t, e.AverageTicketSize(empty).IsZero())
	assert.Empty(t, e.MonthlyRevenue(empty))
	assert.Empty(t, e.DiscountTrend(empty))
	assert.Empty(t, e.GrossVsNet(empty))
	assert.Empty(t, e.RevenueBySalesperson(empty))
	assert.Empty(t, e.TransactionsBySalesperson(empty))

	special := e.SpecialityTests(empty)
	assert.Equal(t, 0, special.Count)
	assert.True(t, special.TotalRevenue.IsZero())
	assert.True(t, special.PercentOfTotal.IsZero())

	clients := e.ClientsAdded(empty)
	assert.Equal(t, 0, clients.Total)
	assert.Empty(t, clients.Monthly)

	split := e.OrgVsReferralRevenue(empty)
	assert.True(t, split.Organisation.IsZero())
	assert.True(t, split.Referral.IsZero())
}

func TestEngine_MonthlyRevenue(t *testing.T) {
	e := newTestEngine()
	table := sampleTable(t)

	monthly := e.MonthlyRevenue(table)
	require.Len(t, monthly, 2)
	assert.Equal(t, testutil.Month(2024, time.January), monthly[0].Month)
	assert.True(t, monthly[0].Amount.Equal(dec("1700")))
	assert.Equal(t, testutil.Month(2024, time.February), monthly[1].Month)
	assert.True(t, monthly[1].Amount.Equal(dec("1299")))

	sum := decimal.Zero
	for _, m := range monthly {
		sum = sum.Add(m.Amount)
	}
	assert.True(t, sum.Equal(e.TotalRevenue(table)), "monthly series sums to the total")
}

func TestEngine_MonthlyRevenueIsChronological(t *testing.T) {
	e := newTestEngine()
	table := testutil.NewTableBuilder(t).
		Add("a", "2024-03-01", 1).
		Add("b", "2023-12-31", 2).
		Add("c", "2024-01-15", 3).
		Build()

	monthly := e.MonthlyRevenue(table)
	require.Len(t, monthly, 3)
	assert.Equal(t, testutil.Month(2023, time.December), monthly[0].Month)
	assert.Equal(t, testutil.Month(2024, time.January), monthly[1].Month)
	assert.Equal(t, testutil.Month(2024, time.March), monthly[2].Month)
}

func TestEngine_SpecialityTests(t *testing.T) {
	e := newTestEngine()
	table := testutil.NewTableBuilder(t).
		Add("1", "2024-01-01", 500).
		Add("2", "2024-01-02", 999).
		Add("3", "2024-01-03", 1200).
		Build()

	stats := e.SpecialityTests(table)
	assert.Equal(t, 2, stats.Count)
	assert.True(t, stats.Threshold.Equal(dec("999")))
	assert.True(t, stats.TotalRevenue.Equal(dec("2199")))
	assert.InDelta(t, 2199.0/2699.0*100, stats.PercentOfTotal.InexactFloat64(), 1e-9)
}

func TestEngine_SpecialityPercentNeedsPositiveTotal(t *testing.T) {
	e := NewEngine(config.Metrics{SpecialityThreshold: dec("-10")})
	table := testutil.NewTableBuilder(t).
		Add("1", "2024-01-01", 0).
		Add("2", "2024-01-02", -5).
		Build()

	stats := e.SpecialityTests(table)
	assert.Equal(t, 2, stats.Count)
	assert.True(t, stats.PercentOfTotal.IsZero())
}

func TestEngine_ClientsAdded(t *testing.T) {
	e := newTestEngine()
	table := testutil.NewTableBuilder(t).
		Add("1", "2024-01-05", 100).Patient("Ravi").
		Add("2", "2024-01-06", 100).Patient("Ravi").
		Add("3", "2024-01-07", 100).Patient("Mira").
		Add("4", "2024-02-01", 100).Patient("Ravi").
		Add("5", "2024-02-02", 100).
		Build()

	stats := e.ClientsAdded(table)
	assert.Equal(t, 2, stats.Total)
	require.Len(t, stats.Monthly, 2)
	assert.Equal(t, 2, stats.Monthly[0].Count)
	assert.Equal(t, 1, stats.Monthly[1].Count, "a patient seen in an earlier month counts again in a new month")
}

func TestEngine_RevenueBy(t *testing.T) {
	e := newTestEngine()
	table := sampleTable(t)

	tests := []struct {
		name string
		dim  model.Dimension
		want []GroupAmount
	}{
		{
			name: "salesperson",
			dim:  model.DimensionSalesperson,
			want: []GroupAmount{{"Ben", dec("1200")}, {"Chen", dec("999")}, {"Asha", dec("800")}},
		},
		{
			name: "referral excludes empty keys",
			dim:  model.DimensionReferral,
			want: []GroupAmount{{"Dr. Rao", dec("1700")}},
		},
		{
			name: "organisation",
			dim:  model.DimensionOrganisation,
			want: []GroupAmount{{"City Lab", dec("800")}},
		},
		{
			name: "marketing organisation",
			dim:  model.DimensionMarketingOrg,
			want: []GroupAmount{{"Org Team", dec("2199")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.RevenueBy(table, tt.dim)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Key, got[i].Key)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "%s: got %s", tt.want[i].Key, got[i].Amount)
			}
		})
	}
}

func TestEngine_BreakdownTiesKeepFirstSeenOrder(t *testing.T) {
	e := newTestEngine()
	table := testutil.NewTableBuilder(t).
		Add("1", "2024-01-01", 100).Salesperson("Zoe").
		Add("2", "2024-01-02", 100).Salesperson("Adam").
		Add("3", "2024-01-03", 300).Salesperson("Mid").
		Add("4", "2024-01-04", 100).Salesperson("Bea").
		Build()

	revenue := e.RevenueBySalesperson(table)
	keys := make([]string, len(revenue))
	for i, g := range revenue {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"Mid", "Zoe", "Adam", "Bea"}, keys)

	counts := e.TransactionsBySalesperson(table)
	assert.Equal(t, []GroupCount{{"Zoe", 1}, {"Adam", 1}, {"Mid", 1}, {"Bea", 1}}, counts)
}

func TestEngine_BreakdownsSumToTotal(t *testing.T) {
	e := newTestEngine()
	table := testutil.NewTableBuilder(t).
		Add("1", "2024-01-01", 100).Salesperson("Asha").
		Add("2", "2024-01-02", 250).Salesperson("Ben").
		Add("3", "2024-02-03", 75.5).Salesperson("Asha").
		Build()

	sum := decimal.Zero
	for _, g := range e.RevenueBySalesperson(table) {
		sum = sum.Add(g.Amount)
	}
	assert.True(t, sum.Equal(e.TotalRevenue(table)))

	count := 0
	for _, g := range e.TransactionsBySalesperson(table) {
		count += g.Count
	}
	assert.Equal(t, len(table), count)
}

func TestEngine_Wrappers(t *testing.T) {
	e := newTestEngine()
	table := sampleTable(t)

	assert.Equal(t, e.RevenueBy(table, model.DimensionReferral), e.ReferralAnalysis(table))
	assert.Equal(t, e.RevenueBy(table, model.DimensionOrganisation), e.OrganisationRevenue(table))

	impact := e.MarketingImpact(table)
	require.Len(t, impact.ByOrganisation, 1)
	require.Len(t, impact.ByReferral, 1)
	assert.Equal(t, "Ref Team", impact.ByReferral[0].Key)
	assert.True(t, impact.ByReferral[0].Amount.Equal(dec("1200")))
}

func TestEngine_DiscountAndGross(t *testing.T) {
	e := newTestEngine()
	table := sampleTable(t)

	discounts := e.DiscountTrend(table)
	require.Len(t, discounts, 2)
	assert.True(t, discounts[0].Amount.Equal(dec("150")))
	assert.True(t, discounts[1].Amount.IsZero())

	gn := e.GrossVsNet(table)
	require.Len(t, gn, 2)
	assert.True(t, gn[0].Gross.Equal(dec("1850")))
	assert.True(t, gn[0].Net.Equal(dec("1700")))
	assert.True(t, gn[1].Gross.Equal(dec("1299")))
	assert.True(t, gn[1].Net.Equal(dec("1299")))
}

func TestEngine_OrgVsReferralRevenue(t *testing.T) {
	e := newTestEngine()
	split := e.OrgVsReferralRevenue(sampleTable(t))

	assert.True(t, split.Organisation.Equal(dec("1000")))
	assert.True(t, split.Referral.Equal(dec("700")))
}
