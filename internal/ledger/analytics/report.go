// Package analytics aggregates a company's green ledger into an environmental
// performance report.
package analytics

// InsightType classifies an insight for display
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// AccountingEquation is the natural-capital identity shown with every report.
const AccountingEquation = "Capital Natural = Pasivos Amb. + Patrimonio Amb."

// Insight is a qualitative finding about the ledger
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// NaturalCapital holds the environmental balance sheet in tCO2e
type NaturalCapital struct {
	AssetsTCO2e      float64 `json:"assets_tco2e"`
	LiabilitiesTCO2e float64 `json:"liabilities_tco2e"`
	EquityTCO2e      float64 `json:"equity_tco2e"`
	Equation         string  `json:"equation"`
}

// Report is the analytics summary of a company's green ledger. Emissions are
// in tCO2e and investment in CLP.
type Report struct {
	CompanyID                string         `json:"company_id"`
	GreenScore               int            `json:"green_score"`
	TotalEmissionsTCO2e      float64        `json:"total_emissions_tco2e"`
	MitigatedEmissionsTCO2e  float64        `json:"mitigated_emissions_tco2e"`
	NetEmissionsTCO2e        float64        `json:"net_emissions_tco2e"`
	SustainableInvestmentCLP float64        `json:"sustainable_investment_clp"`
	NaturalCapital           NaturalCapital `json:"natural_capital"`
	Insights                 []Insight      `json:"insights"`
}
