package analytics

import (
	"fmt"
	"math"
	"strings"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/classification"
)

// Score weights and insight thresholds.
const (
	monetaryWeight   = 60.0
	mitigationWeight = 40.0

	excellentScore         = 80
	lowScore               = 40
	unmitigatedThresholdKg = 1000.0
)

var noDataInsight = Insight{
	Type:        InsightInfo,
	Title:       "Sin datos contables",
	Description: "No existen asientos verdes registrados para generar análisis ambiental.",
}

// categoryTotal is the running positive emissions of one category.
type categoryTotal struct {
	category string
	kg       float64
}

// totals accumulates a single pass over the ledger.
type totals struct {
	emissions   float64
	mitigated   float64
	monetary    float64
	sustainable float64
	categories  []categoryTotal
}

func (t *totals) add(e ledger.EntryData) {
	if e.CO2Equivalent > 0 {
		t.emissions += e.CO2Equivalent
	} else {
		t.mitigated += math.Abs(e.CO2Equivalent)
	}

	amount := math.Abs(e.Amount())
	t.monetary += amount
	if strings.Contains(e.TaxonomyClassification, string(classification.AlignmentSustainable)) {
		t.sustainable += amount
	}

	contribution := math.Max(0, e.CO2Equivalent)
	for i := range t.categories {
		if t.categories[i].category == e.Category {
			t.categories[i].kg += contribution
			return
		}
	}
	t.categories = append(t.categories, categoryTotal{category: e.Category, kg: contribution})
}

// topCategory returns the category with the highest positive emissions. Ties
// keep the category seen first.
func (t *totals) topCategory() (string, bool) {
	best := categoryTotal{}
	for _, c := range t.categories {
		if c.kg > best.kg {
			best = c
		}
	}
	return best.category, best.kg > 0
}

func (t *totals) score() int {
	if t.monetary == 0 {
		return 0
	}
	monetaryScore := t.sustainable / t.monetary * monetaryWeight
	mitigationScore := mitigationWeight
	if t.emissions > 0 {
		mitigationScore = math.Min(mitigationWeight, t.mitigated/t.emissions*mitigationWeight)
	}
	score := int(math.Floor(monetaryScore + mitigationScore + 0.5))
	return max(0, min(100, score))
}

// BuildReport aggregates a company's entries into a report. An empty ledger
// yields a zero report carrying a single no-data insight.
func BuildReport(companyID string, entries []ledger.EntryData) *Report {
	if len(entries) == 0 {
		return &Report{
			CompanyID:      companyID,
			NaturalCapital: NaturalCapital{Equation: AccountingEquation},
			Insights:       []Insight{noDataInsight},
		}
	}

	var t totals
	for _, e := range entries {
		t.add(e)
	}

	score := t.score()
	insights := make([]Insight, 0, 3)
	if score >= excellentScore {
		insights = append(insights, Insight{
			Type:        InsightSuccess,
			Title:       "Excelente Desempeño Ambiental",
			Description: "Su alineación con la taxonomía T-MAS indica un fuerte liderazgo en sostenibilidad.",
		})
	}
	if score < lowScore {
		insights = append(insights, Insight{
			Type:        InsightWarning,
			Title:       "Oportunidad de Mejora",
			Description: "Baja proporción de gastos sostenibles. Considere invertir en eficiencia energética o modelos de transición.",
		})
	}
	if t.mitigated == 0 && t.emissions > unmitigatedThresholdKg {
		insights = append(insights, Insight{
			Type:        InsightWarning,
			Title:       "Ausencia de Mitigación",
			Description: "No registra acciones contables de compensación o mitigación de huella de carbono en el período activo.",
		})
	}
	if category, ok := t.topCategory(); ok {
		insights = append(insights, Insight{
			Type:        InsightInfo,
			Title:       "Principal Fuente de Emisiones",
			Description: fmt.Sprintf("La categoría contable '%s' representa el mayor volumen de emisiones. Se recomienda foco de inversión verde aquí.", category),
		})
	}

	assets := t.mitigated / 1000
	liabilities := t.emissions / 1000
	return &Report{
		CompanyID:                companyID,
		GreenScore:               score,
		TotalEmissionsTCO2e:      liabilities,
		MitigatedEmissionsTCO2e:  assets,
		NetEmissionsTCO2e:        liabilities - assets,
		SustainableInvestmentCLP: t.sustainable,
		NaturalCapital: NaturalCapital{
			AssetsTCO2e:      assets,
			LiabilitiesTCO2e: liabilities,
			EquityTCO2e:      assets - liabilities,
			Equation:         AccountingEquation,
		},
		Insights: insights,
	}
}
