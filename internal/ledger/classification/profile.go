// Package classification maps counterparties to emission profiles and turns
// spend into physical quantities and CO2-equivalent estimates.
package classification

// AlignmentStatus is the taxonomy alignment of a spend category
type AlignmentStatus string

const (
	AlignmentSustainable  AlignmentStatus = "sostenible"
	AlignmentTransition   AlignmentStatus = "transición"
	AlignmentNotAligned   AlignmentStatus = "no alineada"
)

// Reporting scopes (GHG Protocol)
const (
	Scope1 = "Alcance 1"
	Scope2 = "Alcance 2"
	Scope3 = "Alcance 3"
)

// UnitCurrency marks profiles whose quantity is measured in currency units.
const UnitCurrency = "CLP"

// Profile is the emission profile assigned to a counterparty
type Profile struct {
	Category     string          `json:"category"`
	Subcategory  string          `json:"subcategory"`
	Scope        string          `json:"scope"`
	TaxonomyCode string          `json:"taxonomy_code"`
	SDGAlignment string          `json:"sdg_alignment"`
	Resource     string          `json:"resource"`
	Unit         string          `json:"unit"`
	UnitPrice    float64         `json:"unit_price"`
	Factor       float64         `json:"factor"`
	Status       AlignmentStatus `json:"status"`
}

// CurrencyDenominated reports whether quantities are measured in currency
// units rather than a physical unit.
func (p Profile) CurrencyDenominated() bool {
	return p.UnitPrice <= 1
}

// TaxonomyLabel renders the taxonomy code with its alignment status, e.g.
// "EA.131 (transición)".
func (p Profile) TaxonomyLabel() string {
	return p.TaxonomyCode + " (" + string(p.Status) + ")"
}
