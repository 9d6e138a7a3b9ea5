package cli

import (
	"testing"

	"github.com/Veraticus/ledgerflow/internal/ingest"
	"github.com/stretchr/testify/assert"
)

func TestSourceProgress(t *testing.T) {
	out := &syncBuffer{}
	p := NewSourceProgress(out, 2)

	p.Track(ingest.SourceStats{Name: "daily.csv", Read: 10, Kept: 9})
	p.Track(ingest.SourceStats{Name: "history.xlsx", Read: 100, Kept: 100})
	p.Finish()

	assert.Len(t, p.Loaded(), 2)
	assert.Equal(t, "history.xlsx", p.Loaded()[1].Name)
	assert.Contains(t, out.String(), "2/2")
}
