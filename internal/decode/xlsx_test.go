package decode

import (
	"testing"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory XLSX with one sheet per entry of sheets.
func workbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseXLSX_FirstSheet(t *testing.T) {
	data := workbook(t, map[string][][]any{
		"Ledger": {
			{"Bill ID", "Agent", "Amount"},
			{"1", "Asha", "500"},
			{"2", "Ben"},
			{nil, nil, nil},
			{"3", "Asha", "250"},
		},
	})

	src, warnings, err := ParseXLSX("ledger.xlsx", data, "")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, []string{"Bill ID", "Agent", "Amount"}, src.Headers)
	require.Equal(t, 3, src.Len())
	assert.Equal(t, model.Record{"Bill ID": "2", "Agent": "Ben", "Amount": ""}, src.Records[1])
	assert.Equal(t, "250", src.Records[2]["Amount"])
}

func TestParseXLSX_NamedSheet(t *testing.T) {
	data := workbook(t, map[string][][]any{
		"Ledger": {{"A"}, {"1"}},
	})

	_, _, err := ParseXLSX("ledger.xlsx", data, "Missing")
	require.Error(t, err)

	src, _, err := ParseXLSX("ledger.xlsx", data, "Ledger")
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())
}

func TestParseXLSX_EmptySheet(t *testing.T) {
	data := workbook(t, map[string][][]any{"Empty": nil})

	_, _, err := ParseXLSX("empty.xlsx", data, "")
	assert.ErrorIs(t, err, common.ErrEmptySource)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, _, err := ParseXLSX("broken.xlsx", []byte("not a zip"), "")
	assert.Error(t, err)
}
