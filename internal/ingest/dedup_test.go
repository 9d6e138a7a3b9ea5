package ingest

import (
	"testing"

	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func txn(id, source string, revenue int64) model.Transaction {
	return model.Transaction{InvoiceID: id, Source: source, Revenue: decimal.NewFromInt(revenue)}
}

func TestDedup(t *testing.T) {
	tests := []struct {
		name        string
		in          model.Table
		wantIDs     []string
		wantRemoved int
	}{
		{name: "empty", in: nil, wantIDs: []string{}, wantRemoved: 0},
		{
			name:        "no duplicates",
			in:          model.Table{txn("1", "a", 1), txn("2", "a", 2)},
			wantIDs:     []string{"1", "2"},
			wantRemoved: 0,
		},
		{
			name:        "repeats keep order of first occurrence",
			in:          model.Table{txn("3", "a", 1), txn("1", "a", 2), txn("3", "a", 3), txn("2", "a", 4), txn("1", "a", 5)},
			wantIDs:     []string{"3", "1", "2"},
			wantRemoved: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := Dedup(tt.in)

			ids := make([]string, 0, len(got))
			for _, g := range got {
				ids = append(ids, g.InvoiceID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestDedup_UniqueAndIdempotent(t *testing.T) {
	in := model.Table{txn("1", "a", 1), txn("2", "a", 2), txn("1", "a", 3), txn("2", "a", 4), txn("3", "a", 5)}

	once, _ := Dedup(in)
	seen := make(map[string]bool)
	for _, g := range once {
		assert.False(t, seen[g.InvoiceID], "duplicate id %s", g.InvoiceID)
		seen[g.InvoiceID] = true
	}

	twice, removed := Dedup(once)
	assert.Equal(t, once, twice)
	assert.Zero(t, removed)
	assert.Len(t, in, 5, "input is not modified")
}

func TestDedup_FirstSourceWins(t *testing.T) {
	a := model.Table{txn("1", "daily", 100), txn("2", "daily", 200)}
	b := model.Table{txn("2", "history", 999), txn("3", "history", 300)}

	merged, removed := Dedup(append(append(model.Table{}, a...), b...))

	assert.Equal(t, 1, removed)
	assert.Len(t, merged, 3)
	assert.Equal(t, "daily", merged[1].Source)
	assert.True(t, merged[1].Revenue.Equal(decimal.NewFromInt(200)))
}
