package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/Veraticus/ledgerflow/internal/metrics"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/charmbracelet/lipgloss"
)

// MaxBreakdownRows caps each breakdown table in the text dashboard.
const MaxBreakdownRows = 10

// RenderDashboard writes the text dashboard to w.
func RenderDashboard(w io.Writer, d *report.Dashboard) error {
	sections := []string{
		FormatTitle("Sales Dashboard") + "\n" + SubtleStyle.Render(periodLine(d.Period)),
		renderKPIs(d),
	}

	if alerts := renderAlerts(d.Alerts); alerts != "" {
		sections = append(sections, alerts)
	}

	if !d.HasData() {
		sections = append(sections, FormatWarning("No transactions survived ingestion."))
	} else {
		sections = append(sections,
			RenderBox(ChartIcon+" Monthly", renderMonthly(d)),
			renderBreakdowns(d),
			RenderBox("Speciality & Forecast", renderSpecialityForecast(d)),
		)
	}

	if d.Ingestion != nil {
		sections = append(sections, RenderBox("Ingestion", renderIngestion(d.Ingestion)))
	}

	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}

// RenderJSON writes the dashboard as indented JSON.
func RenderJSON(w io.Writer, d *report.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	return nil
}

// RenderSchema writes how a source's headers map onto canonical fields.
func RenderSchema(w io.Writer, source string, r ingest.SchemaReport) error {
	rows := make([][]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		status := SuccessStyle.Render("mapped")
		switch {
		case c.Skipped:
			status = ErrorStyle.Render("skipped")
		case c.Passthrough:
			status = SubtleStyle.Render("passthrough")
		}
		rows = append(rows, []string{strconv.Quote(c.Header), c.Field, status})
	}

	out := []string{
		FormatTitle("Schema: " + source),
		RenderTable([]string{"Header", "Field", "Status"}, rows, nil),
	}
	if r.OK() {
		out = append(out, FormatSuccess("All required fields present"))
	} else {
		out = append(out, FormatError("Missing required fields: "+strings.Join(r.Missing, ", ")))
	}

	_, err := fmt.Fprintln(w, strings.Join(out, "\n\n"))
	return err
}

func periodLine(p report.Period) string {
	if p.Start.IsZero() {
		return "No transactions"
	}
	return fmt.Sprintf("%s to %s", p.Start.Format("Jan 2, 2006"), p.End.Format("Jan 2, 2006"))
}

func renderKPIs(d *report.Dashboard) string {
	kpi := func(value, label string) string {
		return KPIBoxStyle.Render(KPIValueStyle.Render(value) + "\n" + KPILabelStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		kpi(FormatMoney(d.KPIs.TotalRevenue), "Total Revenue"),
		kpi(FormatMoney(d.KPIs.AverageTicketSize), "Avg Ticket"),
		kpi(strconv.Itoa(d.KPIs.Transactions), "Transactions"),
		kpi(strconv.Itoa(d.KPIs.Clients), "Clients"),
		kpi(FormatMoney(d.Forecast.Projected), "Month-End Forecast"),
	)
}

func renderAlerts(alerts []string) string {
	if len(alerts) == 0 {
		return ""
	}
	lines := make([]string, len(alerts))
	for i, a := range alerts {
		lines[i] = AlertStyle.Render(WarningIcon + " " + a)
	}
	return strings.Join(lines, "\n")
}

func renderMonthly(d *report.Dashboard) string {
	flagged := make(map[string]bool, len(d.Anomalies))
	for _, a := range d.Anomalies {
		flagged[a.Month.Format(model.MonthLayout)] = a.Anomaly
	}
	discounts := make(map[string]string, len(d.Series.Discounts))
	for _, m := range d.Series.Discounts {
		discounts[m.Month.Format(model.MonthLayout)] = FormatMoney(m.Amount)
	}
	clients := make(map[string]int, len(d.Series.Clients))
	for _, m := range d.Series.Clients {
		clients[m.Month.Format(model.MonthLayout)] = m.Count
	}

	rows := make([][]string, 0, len(d.Series.GrossVsNet))
	for _, m := range d.Series.GrossVsNet {
		key := m.Month.Format(model.MonthLayout)
		flag := ""
		if flagged[key] {
			flag = WarningStyle.Render(WarningIcon)
		}
		rows = append(rows, []string{
			key,
			FormatMoney(m.Net),
			FormatMoney(m.Gross),
			discounts[key],
			strconv.Itoa(clients[key]),
			flag,
		})
	}

	return RenderTable(
		[]string{"Month", "Revenue", "Gross", "Discount", "Clients", ""},
		rows,
		[]lipgloss.Position{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignLeft},
	)
}

func renderBreakdowns(d *report.Dashboard) string {
	counts := make(map[string]int, len(d.Breakdowns.TransactionsBySalesperson))
	for _, c := range d.Breakdowns.TransactionsBySalesperson {
		counts[c.Key] = c.Count
	}

	salesRows := make([][]string, 0, len(d.Breakdowns.RevenueBySalesperson))
	for _, g := range limit(d.Breakdowns.RevenueBySalesperson) {
		salesRows = append(salesRows, []string{g.Key, FormatMoney(g.Amount), strconv.Itoa(counts[g.Key])})
	}

	boxes := []string{
		RenderBox("By Salesperson", RenderTable(
			[]string{"Salesperson", "Revenue", "Txns"}, salesRows,
			[]lipgloss.Position{AlignLeft, AlignRight, AlignRight})),
		RenderBox("By Referral", groupTable("Referral", d.Breakdowns.Referrals)),
		RenderBox("By Organisation", groupTable("Organisation", d.Breakdowns.Organisations)),
		RenderBox("Marketing (Organisation)", groupTable("Marketing", d.Breakdowns.Marketing.ByOrganisation)),
		RenderBox("Marketing (Referral)", groupTable("Marketing", d.Breakdowns.Marketing.ByReferral)),
	}
	return strings.Join(boxes, "\n")
}

func groupTable(label string, groups []metrics.GroupAmount) string {
	if len(groups) == 0 {
		return SubtleStyle.Render("no data")
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range limit(groups) {
		rows = append(rows, []string{g.Key, FormatMoney(g.Amount)})
	}
	if extra := len(groups) - MaxBreakdownRows; extra > 0 {
		rows = append(rows, []string{SubtleStyle.Render(fmt.Sprintf("… %d more", extra)), ""})
	}
	return RenderTable([]string{label, "Revenue"}, rows, []lipgloss.Position{AlignLeft, AlignRight})
}

func limit(groups []metrics.GroupAmount) []metrics.GroupAmount {
	if len(groups) > MaxBreakdownRows {
		return groups[:MaxBreakdownRows]
	}
	return groups
}

func renderSpecialityForecast(d *report.Dashboard) string {
	s := d.Speciality
	f := d.Forecast
	lines := []string{
		fmt.Sprintf("Speciality tests (≥ %s): %d, %s (%s of revenue)",
			FormatMoney(s.Threshold), s.Count, FormatMoney(s.TotalRevenue), FormatPercent(s.PercentOfTotal)),
		fmt.Sprintf("Organisation revenue: %s   Referral revenue: %s",
			FormatMoney(d.Breakdowns.RevenueSplit.Organisation), FormatMoney(d.Breakdowns.RevenueSplit.Referral)),
		fmt.Sprintf("%s month to date (day %d of %d): %s, projected %s",
			f.AsOf.Format("January 2006"), f.Day, f.DaysInMonth, FormatMoney(f.MonthToDate), BoldStyle.Render(FormatMoney(f.Projected))),
	}
	return strings.Join(lines, "\n")
}

func renderIngestion(res *ingest.Result) string {
	rows := make([][]string, 0, len(res.Sources))
	for _, s := range res.Sources {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Read),
			strconv.Itoa(s.Kept),
			formatDropped(s.Dropped),
			strconv.Itoa(s.Duplicates),
		})
	}
	table := RenderTable(
		[]string{"Source", "Read", "Kept", "Dropped", "Duplicates"},
		rows,
		[]lipgloss.Position{AlignLeft, AlignRight, AlignRight, AlignLeft, AlignRight},
	)
	return table + "\n" + SubtleStyle.Render(fmt.Sprintf("Cross-source duplicates removed: %d", res.CrossSourceDuplicates))
}

func formatDropped(dropped map[ingest.DropReason]int) string {
	if len(dropped) == 0 {
		return "0"
	}
	reasons := make([]string, 0, len(dropped))
	for r := range dropped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if n := dropped[ingest.DropReason(r)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " ")
}
