// Package generator turns register extractions into green ledger entries.
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/classification"
	"kontax/portal-backend/internal/rcv"
	"kontax/portal-backend/pkg/locale"
)

// MissingCounterparty groups purchase documents with neither RUT nor name.
const MissingCounterparty = "SIN-RUT"

const (
	categoryTransport = "Transporte"
	categoryEmissions = "Emisiones"

	supplierAccountName = "Proveedores"
	customerAccountName = "Clientes"

	unitDocuments       = "documentos"
	unitIssuedDocuments = "documentos emitidos"
	unitEstimatedKm     = "km estimados"
)

// Generate builds the green ledger entries for one period. Purchases come
// first (one entry per counterparty, or per summary line when there is no
// detail), then sales (one entry per DTE type), then the logistics estimate
// for received dispatch guides. Generate has no side effects and never fails:
// missing amounts count as zero and missing names fall back to the grouping key.
func Generate(ext *rcv.Extraction, period string) []ledger.EntryData {
	if ext == nil {
		return []ledger.EntryData{}
	}

	entries := make([]ledger.EntryData, 0)
	if len(ext.PurchaseDetail) > 0 {
		entries = append(entries, purchaseDetailEntries(ext.PurchaseDetail)...)
	} else if ext.PurchaseSummary != nil {
		entries = append(entries, purchaseSummaryEntries(ext.PurchaseSummary.Lines, period)...)
	}

	if len(ext.SalesDetail) > 0 {
		entries = append(entries, salesDetailEntries(ext.SalesDetail)...)
	} else if ext.SalesSummary != nil {
		entries = append(entries, salesSummaryEntries(ext.SalesSummary.Lines, period)...)
	}

	if entry, ok := logisticsEntry(ext.PurchaseDetail); ok {
		entries = append(entries, entry)
	}
	return entries
}

// documentGroup accumulates documents sharing a grouping key.
type documentGroup struct {
	key   string
	docs  []rcv.Document
	net   decimal.Decimal
	total decimal.Decimal
}

func (g *documentGroup) add(doc rcv.Document) {
	g.docs = append(g.docs, doc)
	g.net = g.net.Add(decimal.NewFromFloat(doc.NetAmount))
	g.total = g.total.Add(decimal.NewFromFloat(doc.TotalAmount))
}

// distinctTypes returns the DTE types of the group in first-seen order.
func (g *documentGroup) distinctTypes() []int {
	seen := make(map[int]bool)
	var types []int
	for _, d := range g.docs {
		if !seen[d.Type] {
			seen[d.Type] = true
			types = append(types, d.Type)
		}
	}
	return types
}

func counterpartyKey(doc rcv.Document) string {
	switch {
	case doc.CounterpartyRUT != "":
		return doc.CounterpartyRUT
	case doc.CounterpartyName != "":
		return doc.CounterpartyName
	default:
		return MissingCounterparty
	}
}

// groupBy groups documents by key keeping first-seen key order.
func groupBy(docs []rcv.Document, keyOf func(rcv.Document) string) []*documentGroup {
	index := make(map[string]*documentGroup)
	var groups []*documentGroup
	for _, doc := range docs {
		key := keyOf(doc)
		g, ok := index[key]
		if !ok {
			g = &documentGroup{key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.add(doc)
	}
	return groups
}

func purchaseDetailEntries(docs []rcv.Document) []ledger.EntryData {
	groups := groupBy(docs, counterpartyKey)
	entries := make([]ledger.EntryData, 0, len(groups))
	for _, g := range groups {
		first := g.docs[0]
		profile := classification.Classify(first.CounterpartyName)

		name := first.CounterpartyName
		if name == "" {
			name = g.key
		}
		labels := make([]string, 0)
		for _, t := range g.distinctTypes() {
			labels = append(labels, rcv.TypeLabel(t))
		}

		net := g.net.InexactFloat64()
		total := g.total.InexactFloat64()
		quantity := classification.EstimateQuantity(net, profile)

		entries = append(entries, ledger.EntryData{
			Category:    profile.Category,
			Subcategory: profile.Subcategory,
			Description: fmt.Sprintf("%s - %d doc(s) [%s] - Neto $%s",
				name, len(g.docs), strings.Join(labels, ", "), locale.FormatNumber(net)),
			PhysicalQuantity:       quantity,
			PhysicalUnit:           profile.Unit,
			Debit:                  ledger.Posting{Account: ledger.AccountGreen, Name: profile.Category, Amount: total},
			Credit:                 ledger.Posting{Account: ledger.AccountSuppliers, Name: supplierAccountName, Amount: total},
			MonetaryValue:          total,
			CO2Equivalent:          classification.CalculateCO2(quantity, profile),
			Methodology:            fmt.Sprintf("HuellaChile MMA 2024 - Factor %s kgCO2/%s - %s", formatFactor(profile.Factor), profile.Unit, profile.Resource),
			Scope:                  profile.Scope,
			SDGAlignment:           profile.SDGAlignment,
			TaxonomyClassification: profile.TaxonomyLabel(),
		})
	}
	return entries
}

func purchaseSummaryEntries(lines []rcv.SummaryLine, period string) []ledger.EntryData {
	entries := make([]ledger.EntryData, 0, len(lines))
	for _, line := range lines {
		if line.Count == 0 {
			continue
		}
		category, subcategory, taxonomy := categoryEmissions, "Cadena de valor (resumen)", "EA.100"
		if line.Type == rcv.TypeDispatchGuide {
			category, subcategory, taxonomy = categoryTransport, "Guías de Despacho", "EA.133"
		}

		entries = append(entries, ledger.EntryData{
			Category:    category,
			Subcategory: subcategory,
			Description: fmt.Sprintf("Compras %s - %d docs - Neto $%s - Período %s",
				rcv.TypeLabel(line.Type), line.Count, locale.FormatNumber(line.NetAmount), period),
			PhysicalQuantity:       float64(line.Count),
			PhysicalUnit:           unitDocuments,
			Debit:                  ledger.Posting{Account: ledger.AccountGreen, Name: category, Amount: line.TotalAmount},
			Credit:                 ledger.Posting{Account: ledger.AccountSuppliers, Name: supplierAccountName, Amount: line.TotalAmount},
			MonetaryValue:          line.TotalAmount,
			CO2Equivalent:          classification.SpendCO2(line.NetAmount, classification.FactorGenericSpend),
			Methodology:            "SEEA-CF / RCV Resumen SII - Factor monetario genérico",
			Scope:                  classification.Scope3,
			SDGAlignment:           "ODS 12, ODS 13",
			TaxonomyClassification: taxonomy + " (" + string(classification.AlignmentNotAligned) + ")",
		})
	}
	return entries
}

// salesTagging is the classification applied to a sales DTE type.
type salesTagging struct {
	category    string
	subcategory string
	factor      float64
	methodology string
	sdg         string
	taxonomy    string
}

func salesTaggingFor(dteType int) salesTagging {
	if dteType == rcv.TypeDispatchGuide {
		return salesTagging{
			category:    categoryTransport,
			subcategory: "Despachos emitidos",
			factor:      classification.FactorSalesDispatchSpend,
			methodology: "GHG Protocol - Factor logístico por guía",
			sdg:         "ODS 11, ODS 13",
			taxonomy:    "EA.133 (" + string(classification.AlignmentTransition) + ")",
		}
	}
	return salesTagging{
		category:    categoryEmissions,
		subcategory: "Actividad productiva",
		factor:      classification.FactorSalesProductiveSpend,
		methodology: "SEEA-CF - Factor productivo por ventas",
		sdg:         "ODS 8, ODS 12",
		taxonomy:    "EA.110 (" + string(classification.AlignmentTransition) + ")",
	}
}

func salesDetailEntries(docs []rcv.Document) []ledger.EntryData {
	groups := groupBy(docs, func(d rcv.Document) string { return strconv.Itoa(d.Type) })
	entries := make([]ledger.EntryData, 0, len(groups))
	for _, g := range groups {
		dteType := g.docs[0].Type
		tag := salesTaggingFor(dteType)
		net := g.net.InexactFloat64()
		total := g.total.InexactFloat64()

		entries = append(entries, ledger.EntryData{
			Category:    tag.category,
			Subcategory: tag.subcategory,
			Description: fmt.Sprintf("Ventas %s - %d docs - Neto $%s",
				rcv.TypeLabel(dteType), len(g.docs), locale.FormatNumber(net)),
			PhysicalQuantity:       float64(len(g.docs)),
			PhysicalUnit:           unitIssuedDocuments,
			Debit:                  ledger.Posting{Account: ledger.AccountCustomers, Name: customerAccountName, Amount: total},
			Credit:                 ledger.Posting{Account: ledger.AccountGreenIncome, Name: tag.category, Amount: total},
			MonetaryValue:          total,
			CO2Equivalent:          classification.SpendCO2(net, tag.factor),
			Methodology:            tag.methodology,
			Scope:                  classification.Scope1,
			SDGAlignment:           tag.sdg,
			TaxonomyClassification: tag.taxonomy,
		})
	}
	return entries
}

func salesSummaryEntries(lines []rcv.SummaryLine, period string) []ledger.EntryData {
	entries := make([]ledger.EntryData, 0, len(lines))
	for _, line := range lines {
		if line.Count == 0 {
			continue
		}
		tag := salesTaggingFor(line.Type)

		entries = append(entries, ledger.EntryData{
			Category:               tag.category,
			Subcategory:            tag.subcategory,
			Description:            fmt.Sprintf("Ventas %s - %d docs - Período %s", rcv.TypeLabel(line.Type), line.Count, period),
			PhysicalQuantity:       float64(line.Count),
			PhysicalUnit:           unitDocuments,
			Debit:                  ledger.Posting{Account: ledger.AccountCustomers, Name: customerAccountName, Amount: line.TotalAmount},
			Credit:                 ledger.Posting{Account: ledger.AccountGreenIncome, Name: tag.category, Amount: line.TotalAmount},
			MonetaryValue:          line.TotalAmount,
			CO2Equivalent:          classification.SpendCO2(line.NetAmount, tag.factor),
			Methodology:            "SEEA-CF / RCV Ventas Resumen SII",
			Scope:                  classification.Scope1,
			SDGAlignment:           "ODS 8, ODS 12",
			TaxonomyClassification: tag.taxonomy,
		})
	}
	return entries
}

// logisticsEntry estimates road transport for received dispatch guides. It is
// emitted in addition to the per-counterparty entries.
func logisticsEntry(purchases []rcv.Document) (ledger.EntryData, bool) {
	count := 0
	total := decimal.Zero
	for _, d := range purchases {
		if d.Type != rcv.TypeDispatchGuide {
			continue
		}
		count++
		total = total.Add(decimal.NewFromFloat(d.TotalAmount))
	}
	if count == 0 {
		return ledger.EntryData{}, false
	}

	km := count * classification.KmPerDispatchGuide
	amount := total.InexactFloat64()
	return ledger.EntryData{
		Category:    categoryTransport,
		Subcategory: "Guías de despacho recibidas",
		Description: fmt.Sprintf("%d guías de despacho - %s km logísticos estimados (%d km/guía promedio Chile)",
			count, locale.FormatNumber(float64(km)), classification.KmPerDispatchGuide),
		PhysicalQuantity:       float64(km),
		PhysicalUnit:           unitEstimatedKm,
		Debit:                  ledger.Posting{Account: ledger.AccountGreen, Name: categoryTransport, Amount: amount},
		Credit:                 ledger.Posting{Account: ledger.AccountSuppliers, Name: supplierAccountName, Amount: amount},
		MonetaryValue:          amount,
		CO2Equivalent:          classification.SpendCO2(float64(km), classification.FactorLightVehicleKm),
		Methodology:            fmt.Sprintf("HuellaChile MMA 2024 - %s kgCO2/km vehículo liviano", formatFactor(classification.FactorLightVehicleKm)),
		Scope:                  classification.Scope3,
		SDGAlignment:           "ODS 11, ODS 13",
		TaxonomyClassification: "EA.133 (" + string(classification.AlignmentTransition) + ")",
	}, true
}

func formatFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
