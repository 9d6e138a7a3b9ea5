package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ledgerflow/internal/cli"
	"github.com/Veraticus/ledgerflow/internal/metrics"
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const monthLayout = "Jan 2006"

var (
	overviewColumns = []table.Column{
		{Title: "Metric", Width: 28},
		{Title: "Value", Width: 20},
	}
	monthlyColumns = []table.Column{
		{Title: "Month", Width: 10},
		{Title: "Revenue", Width: 16},
		{Title: "Gross", Width: 16},
		{Title: "Discount", Width: 14},
		{Title: "Net", Width: 16},
		{Title: "Clients", Width: 8},
	}
	breakdownColumns = []table.Column{
		{Title: "Dimension", Width: 22},
		{Title: "Name", Width: 28},
		{Title: "Revenue", Width: 16},
		{Title: "Invoices", Width: 9},
	}
	anomalyColumns = []table.Column{
		{Title: "Month", Width: 10},
		{Title: "Revenue", Width: 16},
		{Title: "Rolling Mean", Width: 16},
		{Title: "Rolling Std", Width: 16},
		{Title: "Anomaly", Width: 8},
	}
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("Sales Dashboard"))
	b.WriteString(" ")
	b.WriteString(m.theme.Subtitle.Render(periodLabel(m.dashboard.Period)))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.active == TabOverview {
		for _, alert := range m.dashboard.Alerts {
			b.WriteString(m.theme.Alert.Render("! " + alert))
			b.WriteString("\n")
		}
	}

	t := m.tables[m.active]
	if len(t.Rows()) == 0 {
		b.WriteString(m.theme.Empty.Render(emptyMessage(m.active)))
	} else {
		b.WriteString(m.theme.Content.Render(t.View()))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.StatusBar.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(m.tables))
	for i := range m.tables {
		style := m.theme.Tab
		if Tab(i) == m.active {
			style = m.theme.ActiveTab
		}
		rendered[i] = style.Render(Tab(i).String())
	}

	row := lipgloss.JoinHorizontal(lipgloss.Bottom, rendered...)
	if gap := m.width - lipgloss.Width(row) - 2; gap > 0 {
		row = lipgloss.JoinHorizontal(lipgloss.Bottom, row, m.theme.TabGap.Render(strings.Repeat(" ", gap)))
	}
	return row
}

func emptyMessage(t Tab) string {
	if t == TabAnomalies {
		return "No monthly revenue to analyse."
	}
	return "No transactions loaded."
}

func periodLabel(p report.Period) string {
	if p.Start.IsZero() {
		return "no transactions"
	}
	return p.Start.Format("2006-01-02") + " to " + p.End.Format("2006-01-02")
}

func overviewRows(d *report.Dashboard) []table.Row {
	if !d.HasData() {
		return nil
	}

	special := d.Speciality
	rows := []table.Row{
		{"Total revenue", cli.FormatMoney(d.KPIs.TotalRevenue)},
		{"Average ticket size", cli.FormatMoney(d.KPIs.AverageTicketSize)},
		{"Transactions", strconv.Itoa(d.KPIs.Transactions)},
		{"Clients", strconv.Itoa(d.KPIs.Clients)},
		{fmt.Sprintf("Speciality tests (≥ %s)", cli.FormatMoney(special.Threshold)), strconv.Itoa(special.Count)},
		{"Speciality revenue", cli.FormatMoney(special.TotalRevenue)},
		{"Speciality share", cli.FormatPercent(special.PercentOfTotal)},
		{"Organisation revenue", cli.FormatMoney(d.Breakdowns.RevenueSplit.Organisation)},
		{"Referral revenue", cli.FormatMoney(d.Breakdowns.RevenueSplit.Referral)},
		{"Month to date", cli.FormatMoney(d.Forecast.MonthToDate)},
		{"Projected this month", cli.FormatMoney(d.Forecast.Projected)},
	}
	return rows
}

func monthlyRows(d *report.Dashboard) []table.Row {
	discounts := amountsByMonth(d.Series.Discounts)
	grossNet := make(map[time.Time]metrics.MonthlyGrossNet, len(d.Series.GrossVsNet))
	for _, g := range d.Series.GrossVsNet {
		grossNet[g.Month] = g
	}
	clients := make(map[time.Time]int, len(d.Series.Clients))
	for _, c := range d.Series.Clients {
		clients[c.Month] = c.Count
	}

	rows := make([]table.Row, 0, len(d.Series.Revenue))
	for _, r := range d.Series.Revenue {
		g := grossNet[r.Month]
		rows = append(rows, table.Row{
			r.Month.Format(monthLayout),
			cli.FormatMoney(r.Amount),
			cli.FormatMoney(g.Gross),
			cli.FormatMoney(discounts[r.Month]),
			cli.FormatMoney(g.Net),
			strconv.Itoa(clients[r.Month]),
		})
	}
	return rows
}

func amountsByMonth(series []metrics.MonthlyAmount) map[time.Time]decimal.Decimal {
	out := make(map[time.Time]decimal.Decimal, len(series))
	for _, s := range series {
		out[s.Month] = s.Amount
	}
	return out
}

func breakdownRows(d *report.Dashboard) []table.Row {
	b := d.Breakdowns
	counts := make(map[string]int, len(b.TransactionsBySalesperson))
	for _, c := range b.TransactionsBySalesperson {
		counts[c.Key] = c.Count
	}

	var rows []table.Row
	for _, g := range b.RevenueBySalesperson {
		rows = append(rows, table.Row{"Salesperson", g.Key, cli.FormatMoney(g.Amount), strconv.Itoa(counts[g.Key])})
	}
	rows = appendGroups(rows, "Referral", b.Referrals)
	rows = appendGroups(rows, "Organisation", b.Organisations)
	rows = appendGroups(rows, "Marketing (organisation)", b.Marketing.ByOrganisation)
	rows = appendGroups(rows, "Marketing (referral)", b.Marketing.ByReferral)
	return rows
}

func appendGroups(rows []table.Row, dimension string, groups []metrics.GroupAmount) []table.Row {
	for _, g := range groups {
		rows = append(rows, table.Row{dimension, g.Key, cli.FormatMoney(g.Amount), ""})
	}
	return rows
}

func anomalyRows(d *report.Dashboard) []table.Row {
	rows := make([]table.Row, 0, len(d.Anomalies))
	for _, a := range d.Anomalies {
		flag := ""
		if a.Anomaly {
			flag = "yes"
		}
		rows = append(rows, table.Row{
			a.Month.Format(monthLayout),
			cli.FormatMoney(a.Revenue),
			cli.FormatMoney(a.RollingMean),
			cli.FormatMoney(a.RollingStd),
			flag,
		})
	}
	return rows
}
