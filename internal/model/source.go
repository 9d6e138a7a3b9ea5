package model

// Record is one decoded source row: header string to verbatim cell value.
type Record map[string]string

// SourceTable is the decoded content of one uploaded export, before any
// normalization. Headers keeps the original column order.
type SourceTable struct {
	Name    string
	Headers []string
	Records []Record
}

// Len returns the number of data rows.
func (s SourceTable) Len() int {
	return len(s.Records)
}
