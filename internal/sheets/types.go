package sheets

// Tab titles written by the exporter.
const (
	TabSummary    = "Summary"
	TabMonthly    = "Monthly"
	TabBreakdowns = "Breakdowns"
	TabAnomalies  = "Anomalies"
)

// tabData is the content of one worksheet.
type tabData struct {
	Title string
	// Values are the rows, starting at A1.
	Values [][]any
	// CurrencyColumns are zero-based column indexes formatted as money.
	CurrencyColumns []int
	// HeaderRows are zero-based row indexes rendered bold.
	HeaderRows []int
}

// width returns the widest row of the tab.
func (t tabData) width() int {
	w := 0
	for _, row := range t.Values {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}
