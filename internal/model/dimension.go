package model

// Dimension is a label column transactions can be grouped by.
type Dimension string

// Supported grouping dimensions.
const (
	DimensionSalesperson       Dimension = FieldSalesperson
	DimensionReferral          Dimension = FieldReferral
	DimensionOrganisation      Dimension = FieldOrganisation
	DimensionMarketingOrg      Dimension = FieldMarketingOrg
	DimensionMarketingReferral Dimension = FieldMarketingReferral
)

// String returns the canonical field name of the dimension.
func (d Dimension) String() string {
	return string(d)
}
