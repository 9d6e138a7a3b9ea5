package ingest

import (
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/model"
)

// ledgerHeaders is the header row of a typical daily export.
var ledgerHeaders = []string{
	"Bill ID", "Date", "Agent", "Amount", "Gross", "Discount",
	"Organisation Revenue Amount", "Referral Revenue Amount",
	"Patient Name", "Organisation", "Referral",
}

// sourceTable builds a decoded source from a header row and positional cells.
func sourceTable(name string, headers []string, rows ...[]string) model.SourceTable {
	src := model.SourceTable{Name: name, Headers: headers}
	for _, cells := range rows {
		rec := make(model.Record, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rec[h] = cells[i]
			}
		}
		src.Records = append(src.Records, rec)
	}
	return src
}

// ledgerRow fills a ledgerHeaders row with the interesting cells.
func ledgerRow(id, date, agent, amount, patient string) []string {
	return []string{id, date, agent, amount, amount, "0", "0", "0", patient, "Acme Labs", "Dr. Rao"}
}

func testIngestConfig() config.Ingest {
	return config.Default().Ingest
}
