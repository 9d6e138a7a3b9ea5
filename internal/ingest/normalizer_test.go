package ingest

import (
	"errors"
	"testing"

	"github.com/Veraticus/ledgerflow/internal/common"
	"github.com/Veraticus/ledgerflow/internal/config"
	"github.com/Veraticus/ledgerflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	cfg := testIngestConfig()
	n := NewNormalizer(cfg.Aliases, cfg.Required, nil)

	headers := append([]string{" Bill ID ", "Branch"}, ledgerHeaders[1:]...)
	src := sourceTable("daily.csv", headers,
		append([]string{"1001", "North"}, ledgerRow("", "2024-01-05", "Asha", "500", "Ravi")[1:]...),
	)

	nt, err := n.Normalize(src)
	require.NoError(t, err)

	assert.Equal(t, "daily.csv", nt.Source)
	assert.Equal(t, model.FieldInvoiceID, nt.Columns[0], "header is trimmed before lookup")
	assert.Equal(t, "Branch", nt.Columns[1], "unknown headers pass through")
	assert.True(t, nt.HasColumn(model.FieldSalesperson))
	assert.True(t, nt.HasColumn(model.FieldRevenue))
	assert.Equal(t, model.FieldInvoiceID, nt.Renamed[" Bill ID "])

	require.Len(t, nt.Rows, 1)
	row := nt.Rows[0]
	assert.Equal(t, "1001", row[model.FieldInvoiceID])
	assert.Equal(t, "North", row["Branch"])
	assert.Equal(t, "Asha", row[model.FieldSalesperson])
	assert.Equal(t, "500", row[model.FieldRevenue])

	// The source table is left untouched.
	assert.Equal(t, "1001", src.Records[0][" Bill ID "])
	_, renamedInSource := src.Records[0][model.FieldInvoiceID]
	assert.False(t, renamedInSource)
}

func TestNormalizer_MissingRequired(t *testing.T) {
	cfg := testIngestConfig()
	n := NewNormalizer(cfg.Aliases, cfg.Required, nil)

	src := sourceTable("history.xlsx", []string{"Bill ID", "Date", "Amount"},
		[]string{"1", "2024-01-01", "10"},
	)

	_, err := n.Normalize(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSchema))

	var schemaErr *common.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "history.xlsx", schemaErr.Source)
	assert.Equal(t, []string{
		model.FieldSalesperson,
		model.FieldOrgRevenue,
		model.FieldReferralRevenue,
		model.FieldPatientName,
		model.FieldDiscount,
		model.FieldGross,
		model.FieldOrganisation,
		model.FieldReferral,
	}, schemaErr.Missing)
}

func TestNormalizer_IdempotentOnCanonicalTable(t *testing.T) {
	identity := make(map[string]string, len(model.CanonicalFields))
	for _, f := range model.CanonicalFields {
		identity[f] = f
	}
	n := NewNormalizer(identity, config.DefaultRequired(), nil)

	src := sourceTable("canonical", model.CanonicalFields,
		[]string{"7", "2024-03-01", "Asha", "120", "150", "30", "0", "0", "Ravi", "Acme", "Dr. Rao", "", ""},
		[]string{"8", "2024-03-02", "Ben", "80", "80", "0", "0", "0", "Mira", "Acme", "", "", ""},
	)

	first, err := n.Normalize(src)
	require.NoError(t, err)

	again := model.SourceTable{Name: first.Source, Headers: first.Columns, Records: first.Rows}
	second, err := n.Normalize(again)
	require.NoError(t, err)

	assert.Equal(t, model.CanonicalFields, first.Columns)
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, src.Records, first.Rows)
}

func TestNormalizer_DuplicateTargets(t *testing.T) {
	cfg := testIngestConfig()
	n := NewNormalizer(cfg.Aliases, []string{model.FieldInvoiceID, model.FieldInvoiceDate, model.FieldRevenue}, nil)

	src := sourceTable("dup.csv", []string{"Bill ID", "Date", "Amount", "Total"},
		[]string{"1", "2024-01-01", "10", "12"},
	)

	nt, err := n.Normalize(src)
	require.NoError(t, err)

	assert.Equal(t, []string{model.FieldInvoiceID, model.FieldInvoiceDate, model.FieldRevenue, "Total"}, nt.Columns)
	assert.Equal(t, "10", nt.Rows[0][model.FieldRevenue], "first header mapped to a field wins")
	assert.Equal(t, "12", nt.Rows[0]["Total"])
}

func TestNormalizer_DescribeRequired(t *testing.T) {
	cfg := testIngestConfig()
	n := NewNormalizer(cfg.Aliases, cfg.Required, nil)

	assert.Empty(t, n.Describe(ledgerHeaders).Missing)
	assert.Equal(t, []string{model.FieldInvoiceID}, n.Describe(ledgerHeaders[1:]).Missing)
}

func TestNormalizer_Describe(t *testing.T) {
	cfg := testIngestConfig()
	n := NewNormalizer(cfg.Aliases, []string{model.FieldInvoiceID, model.FieldInvoiceDate, model.FieldRevenue}, nil)

	report := n.Describe([]string{" Bill ID ", "Date", "Amount", "Total", "Notes", "Notes "})

	assert.True(t, report.OK())
	assert.Equal(t, []ColumnMapping{
		{Header: " Bill ID ", Field: model.FieldInvoiceID},
		{Header: "Date", Field: model.FieldInvoiceDate},
		{Header: "Amount", Field: model.FieldRevenue},
		{Header: "Total", Field: "Total", Passthrough: true},
		{Header: "Notes", Field: "Notes", Passthrough: true},
		{Header: "Notes ", Field: "Notes", Skipped: true},
	}, report.Columns)

	missing := n.Describe([]string{"Agent"})
	assert.False(t, missing.OK())
	assert.Equal(t, []string{model.FieldInvoiceID, model.FieldInvoiceDate, model.FieldRevenue}, missing.Missing)
}
