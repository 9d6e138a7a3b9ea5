package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/metrics"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/Veraticus/ledgerflow/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer exports dashboards to a Google Sheets spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets dashboard writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  common.LoggerOrDefault(logger),
	}, nil
}

// Write replaces the content of the dashboard tabs with d.
func (w *Writer) Write(ctx context.Context, d *report.Dashboard) error {
	w.logger.Info("starting dashboard export",
		"transactions", d.KPIs.Transactions,
		"period", fmt.Sprintf("%s to %s", d.Period.Start.Format("2006-01-02"), d.Period.End.Format("2006-01-02")))

	tabs := prepareReportData(d)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var sheetIDs map[string]int64
	err := common.WithRetry(ctx, func() error {
		var prepErr error
		sheetIDs, prepErr = w.prepareSpreadsheet(ctx, tabs)
		return prepErr
	}, retryOpts.Named("prepare spreadsheet"))
	if err != nil {
		return fmt.Errorf("failed to prepare spreadsheet: %w", err)
	}

	rows := 0
	for _, tab := range tabs {
		err := common.WithRetry(ctx, func() error {
			return w.writeTab(ctx, tab)
		}, retryOpts.Named("write tab "+tab.Title))
		if err != nil {
			return fmt.Errorf("failed to write tab %q: %w", tab.Title, err)
		}
		rows += len(tab.Values)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, sheetIDs, tabs)
		}, retryOpts.Named("apply formatting"))
		if err != nil {
			// The values are already written at this point.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("dashboard export completed",
		"spreadsheet_id", w.config.SpreadsheetID,
		"tabs", len(tabs),
		"rows_written", rows)

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig(OAuth2Config{ClientID: config.ClientID, ClientSecret: config.ClientSecret}).TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// prepareSpreadsheet makes sure the spreadsheet and every tab exist and
// returns the sheet id of each tab by title.
func (w *Writer) prepareSpreadsheet(ctx context.Context, tabs []tabData) (map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		return w.createSpreadsheet(ctx, tabs)
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := make(map[string]int64, len(tabs))
	for _, s := range existing.Sheets {
		ids[s.Properties.Title] = s.Properties.SheetId
	}

	var add []*sheets.Request
	for _, tab := range tabs {
		if _, ok := ids[tab.Title]; !ok {
			add = append(add, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab.Title}},
			})
		}
	}
	if len(add) > 0 {
		resp, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID,
			&sheets.BatchUpdateSpreadsheetRequest{Requests: add}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to add tabs: %w", err)
		}
		for _, r := range resp.Replies {
			if r.AddSheet != nil {
				ids[r.AddSheet.Properties.Title] = r.AddSheet.Properties.SheetId
			}
		}
	}

	for _, tab := range tabs {
		_, err := w.service.Spreadsheets.Values.Clear(w.config.SpreadsheetID, tab.Title+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to clear tab %q: %w", tab.Title, err)
		}
	}

	return ids, nil
}

func (w *Writer) createSpreadsheet(ctx context.Context, tabs []tabData) (map[string]int64, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}
	for i, tab := range tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab.Title, SheetId: int64(i)},
		})
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}
	w.config.SpreadsheetID = created.SpreadsheetId

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	ids := make(map[string]int64, len(created.Sheets))
	for _, s := range created.Sheets {
		ids[s.Properties.Title] = s.Properties.SheetId
	}
	return ids, nil
}

// writeTab writes one tab in batches to stay under API request limits.
func (w *Writer) writeTab(ctx context.Context, tab tabData) error {
	for i := 0; i < len(tab.Values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(tab.Values))
		batch := tab.Values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", tab.Title, i+1)
		_, err := w.service.Spreadsheets.Values.Update(w.config.SpreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab.Title, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func (w *Writer) applyFormatting(ctx context.Context, sheetIDs map[string]int64, tabs []tabData) error {
	requests := formattingRequests(sheetIDs, tabs, w.config.CurrencyPattern)
	if len(requests) == 0 {
		return nil
	}
	_, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}

// formattingRequests builds bold headers, currency columns, frozen title rows
// and auto-sized columns for every tab with a known sheet id.
func formattingRequests(sheetIDs map[string]int64, tabs []tabData, currencyPattern string) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range tabs {
		id, ok := sheetIDs[tab.Title]
		if !ok {
			continue
		}
		rows := int64(len(tab.Values))

		for _, r := range tab.HeaderRows {
			requests = append(requests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    int64(r),
						EndRowIndex:      int64(r) + 1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(tab.width()),
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			})
		}

		for _, c := range tab.CurrencyColumns {
			requests = append(requests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    0,
						EndRowIndex:      rows,
						StartColumnIndex: int64(c),
						EndColumnIndex:   int64(c) + 1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: currencyPattern},
						},
					},
					Fields: "userEnteredFormat.numberFormat",
				},
			})
		}

		requests = append(requests,
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:    id,
						Dimension:  "COLUMNS",
						StartIndex: 0,
						EndIndex:   int64(tab.width()),
					},
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		)
	}
	return requests
}

// prepareReportData lays the dashboard out as worksheet rows.
func prepareReportData(d *report.Dashboard) []tabData {
	return []tabData{
		summaryTab(d),
		monthlyTab(d),
		breakdownsTab(d),
		anomaliesTab(d),
	}
}

func summaryTab(d *report.Dashboard) tabData {
	values := [][]any{
		{"Sales Dashboard", periodLabel(d.Period)},
		{},
		{"Metric", "Value"},
		{"Total Revenue", money(d.KPIs.TotalRevenue)},
		{"Average Ticket Size", money(d.KPIs.AverageTicketSize)},
		{"Transactions", d.KPIs.Transactions},
		{"Clients", d.KPIs.Clients},
		{"Speciality Tests", d.Speciality.Count},
		{"Speciality Revenue", money(d.Speciality.TotalRevenue)},
		{"Speciality Share (%)", d.Speciality.PercentOfTotal.Round(2).InexactFloat64()},
		{"Organisation Revenue", money(d.Breakdowns.RevenueSplit.Organisation)},
		{"Referral Revenue", money(d.Breakdowns.RevenueSplit.Referral)},
		{},
		{"Forecast", d.Forecast.AsOf.Format("January 2006")},
		{"Month to Date", money(d.Forecast.MonthToDate)},
		{"Projected Month End", money(d.Forecast.Projected)},
	}
	headers := []int{0, 2, 13}

	if len(d.Alerts) > 0 {
		headers = append(headers, len(values)+1)
		values = append(values, []any{}, []any{"Alerts"})
		for _, a := range d.Alerts {
			values = append(values, []any{a})
		}
	}

	return tabData{Title: TabSummary, Values: values, CurrencyColumns: []int{1}, HeaderRows: headers}
}

func monthlyTab(d *report.Dashboard) tabData {
	values := [][]any{{"Month", "Revenue", "Gross", "Discount", "Clients"}}

	discounts := make(map[string]decimal.Decimal, len(d.Series.Discounts))
	for _, m := range d.Series.Discounts {
		discounts[monthKey(m.Month)] = m.Amount
	}
	clients := make(map[string]int, len(d.Series.Clients))
	for _, m := range d.Series.Clients {
		clients[monthKey(m.Month)] = m.Count
	}

	for _, m := range d.Series.GrossVsNet {
		key := monthKey(m.Month)
		values = append(values, []any{key, money(m.Net), money(m.Gross), money(discounts[key]), clients[key]})
	}

	return tabData{Title: TabMonthly, Values: values, CurrencyColumns: []int{1, 2, 3}, HeaderRows: []int{0}}
}

func breakdownsTab(d *report.Dashboard) tabData {
	values := [][]any{{"Dimension", "Key", "Revenue", "Transactions"}}

	counts := make(map[string]int, len(d.Breakdowns.TransactionsBySalesperson))
	for _, c := range d.Breakdowns.TransactionsBySalesperson {
		counts[c.Key] = c.Count
	}
	for _, g := range d.Breakdowns.RevenueBySalesperson {
		values = append(values, []any{model.DimensionSalesperson.String(), g.Key, money(g.Amount), counts[g.Key]})
	}

	sections := []struct {
		dim    model.Dimension
		groups []metrics.GroupAmount
	}{
		{model.DimensionReferral, d.Breakdowns.Referrals},
		{model.DimensionOrganisation, d.Breakdowns.Organisations},
		{model.DimensionMarketingOrg, d.Breakdowns.Marketing.ByOrganisation},
		{model.DimensionMarketingReferral, d.Breakdowns.Marketing.ByReferral},
	}
	for _, s := range sections {
		for _, g := range s.groups {
			values = append(values, []any{s.dim.String(), g.Key, money(g.Amount), ""})
		}
	}

	return tabData{Title: TabBreakdowns, Values: values, CurrencyColumns: []int{2}, HeaderRows: []int{0}}
}

func anomaliesTab(d *report.Dashboard) tabData {
	values := [][]any{{"Month", "Revenue", "Rolling Mean", "Rolling Std", "Anomaly"}}
	for _, a := range d.Anomalies {
		values = append(values, []any{
			monthKey(a.Month),
			money(a.Revenue),
			money(a.RollingMean),
			a.RollingStd.Round(2).InexactFloat64(),
			a.Anomaly,
		})
	}
	return tabData{Title: TabAnomalies, Values: values, CurrencyColumns: []int{1, 2}, HeaderRows: []int{0}}
}

func periodLabel(p report.Period) string {
	if p.Start.IsZero() {
		return "no transactions"
	}
	return fmt.Sprintf("%s - %s", p.Start.Format("Jan 2, 2006"), p.End.Format("Jan 2, 2006"))
}

func monthKey(t time.Time) string {
	return t.Format(model.MonthLayout)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
