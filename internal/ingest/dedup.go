package ingest

import "github.com/Veraticus/ledgerflow/internal/model"

// Dedup returns a new table holding the first row seen for each InvoiceID,
// in input order, and the number of rows removed. Which copy survives is
// therefore decided by the order the caller concatenated its sources in.
func Dedup(t model.Table) (model.Table, int) {
	seen := make(map[string]bool, len(t))
	out := make(model.Table, 0, len(t))

	for _, txn := range t {
		if seen[txn.InvoiceID] {
			continue
		}
		seen[txn.InvoiceID] = true
		out = append(out, txn)
	}

	return out, len(t) - len(out)
}
