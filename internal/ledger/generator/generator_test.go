package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/classification"
	"kontax/portal-backend/internal/rcv"
)

const period = "2024-03"

func purchase(rut, name string, dteType int, net, total float64) rcv.Document {
	return rcv.Document{
		Type:             dteType,
		CounterpartyRUT:  rut,
		CounterpartyName: name,
		NetAmount:        net,
		TotalAmount:      total,
	}
}

func TestGenerate_ElectricityPurchase(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("96800570-7", "ENEL Distribución Chile S.A.", rcv.TypeInvoice, 1000000, 1190000),
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Energía", e.Category)
	assert.Equal(t, "Electricidad", e.Subcategory)
	assert.Equal(t, classification.Scope2, e.Scope)
	assert.Equal(t, 6667.0, e.PhysicalQuantity)
	assert.Equal(t, "kWh", e.PhysicalUnit)
	assert.Equal(t, 2597.46, e.CO2Equivalent)
	assert.Equal(t, "EA.131 (transición)", e.TaxonomyClassification)
	assert.Equal(t, "HuellaChile MMA 2024 - Factor 0.3896 kgCO2/kWh - electricidad", e.Methodology)
	assert.Equal(t, ledger.Posting{Account: ledger.AccountGreen, Name: "Energía", Amount: 1190000}, e.Debit)
	assert.Equal(t, ledger.Posting{Account: ledger.AccountSuppliers, Name: "Proveedores", Amount: 1190000}, e.Credit)
	assert.Equal(t, 1190000.0, e.MonetaryValue)
	assert.Contains(t, e.Description, "ENEL Distribución Chile S.A. - 1 doc(s) [Factura Electrónica] - Neto $")
}

func TestGenerate_UnrecognisedVendorUsesGenericProfile(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("76123456-0", "ACME SPA", rcv.TypeInvoice, 500000, 595000),
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Emisiones", e.Category)
	assert.Equal(t, "Cadena de valor", e.Subcategory)
	assert.Equal(t, classification.UnitCurrency, e.PhysicalUnit)
	assert.Equal(t, 500000.0, e.PhysicalQuantity)
	assert.Equal(t, 125.0, e.CO2Equivalent)
	assert.Equal(t, "EA.100 (no alineada)", e.TaxonomyClassification)
}

func TestGenerate_DispatchGuidesAddLogisticsEstimate(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("96800570-7", "ENEL Distribución Chile S.A.", rcv.TypeInvoice, 1000000, 1190000),
			purchase("77111222-3", "Transportes del Sur Ltda", rcv.TypeDispatchGuide, 100000, 119000),
			purchase("77111222-3", "Transportes del Sur Ltda", rcv.TypeDispatchGuide, 100000, 119000),
			purchase("78999000-K", "ACME SPA", rcv.TypeDispatchGuide, 100000, 119000),
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 4)

	assert.Equal(t, "Energía", entries[0].Category)
	assert.Equal(t, "Transporte", entries[1].Category)
	assert.Contains(t, entries[1].Description, "2 doc(s)")
	assert.Equal(t, "Emisiones", entries[2].Category)

	logistics := entries[3]
	assert.Equal(t, "Transporte", logistics.Category)
	assert.Equal(t, "Guías de despacho recibidas", logistics.Subcategory)
	assert.Equal(t, 360.0, logistics.PhysicalQuantity)
	assert.Equal(t, "km estimados", logistics.PhysicalUnit)
	assert.Equal(t, 76.0, logistics.CO2Equivalent)
	assert.Equal(t, 357000.0, logistics.MonetaryValue)
	assert.Equal(t, classification.Scope3, logistics.Scope)
	assert.Equal(t, "HuellaChile MMA 2024 - 0.21 kgCO2/km vehículo liviano", logistics.Methodology)
	assert.Contains(t, logistics.Description, "3 guías de despacho")
}

func TestGenerate_NoLogisticsWithoutDispatchGuides(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("76123456-0", "ACME SPA", rcv.TypeInvoice, 500000, 595000),
		},
	}

	for _, e := range Generate(ext, period) {
		assert.NotEqual(t, "Guías de despacho recibidas", e.Subcategory)
	}
}

func TestGenerate_GroupsPurchasesByCounterparty(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("76123456-0", "ACME SPA", rcv.TypeInvoice, 100000.10, 119000),
			purchase("", "Proveedor Sin Rut", rcv.TypeInvoice, 50000, 59500),
			purchase("76123456-0", "ACME SPA", rcv.TypeCreditNote, 100000.20, 119000),
			purchase("", "", 999, 0, 0),
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 3)

	assert.Contains(t, entries[0].Description, "ACME SPA - 2 doc(s) [Factura Electrónica, Nota de Crédito Electrónica]")
	assert.Equal(t, 238000.0, entries[0].Debit.Amount)
	assert.Equal(t, 200000.3, entries[0].PhysicalQuantity)

	assert.Contains(t, entries[1].Description, "Proveedor Sin Rut - 1 doc(s)")

	assert.Contains(t, entries[2].Description, MissingCounterparty+" - 1 doc(s) [DTE 999]")
	assert.Equal(t, classification.Generic.Category, entries[2].Category)
	assert.Equal(t, 0.0, entries[2].CO2Equivalent)
	assert.Equal(t, 0.0, entries[2].Debit.Amount)
}

func TestGenerate_RenewablePurchaseIsMitigation(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("76555444-1", "Paneles Solares del Norte SpA", rcv.TypeInvoice, 1000000, 1190000),
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 1)
	assert.Equal(t, "Inversión Verde", entries[0].Category)
	assert.Less(t, entries[0].CO2Equivalent, 0.0)
	assert.Equal(t, "EA.311 (sostenible)", entries[0].TaxonomyClassification)
}

func TestGenerate_SalesGroupedByType(t *testing.T) {
	ext := &rcv.Extraction{
		SalesDetail: []rcv.Document{
			purchase("11111111-1", "Cliente Uno", rcv.TypeInvoice, 500000, 595000),
			purchase("22222222-2", "Cliente Dos", rcv.TypeDispatchGuide, 250000, 297500),
			purchase("33333333-3", "Cliente Tres", rcv.TypeInvoice, 500000, 595000),
			purchase("", "", rcv.TypeReceipt, 10000, 11900),
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 3)

	invoices := entries[0]
	assert.Equal(t, "Emisiones", invoices.Category)
	assert.Equal(t, "Actividad productiva", invoices.Subcategory)
	assert.Equal(t, 2.0, invoices.PhysicalQuantity)
	assert.Equal(t, "documentos emitidos", invoices.PhysicalUnit)
	assert.Equal(t, 80.0, invoices.CO2Equivalent)
	assert.Equal(t, 1190000.0, invoices.MonetaryValue)
	assert.Equal(t, ledger.Posting{Account: ledger.AccountCustomers, Name: "Clientes", Amount: 1190000}, invoices.Debit)
	assert.Equal(t, ledger.Posting{Account: ledger.AccountGreenIncome, Name: "Emisiones", Amount: 1190000}, invoices.Credit)
	assert.Equal(t, classification.Scope1, invoices.Scope)
	assert.Equal(t, "EA.110 (transición)", invoices.TaxonomyClassification)
	assert.Contains(t, invoices.Description, "Ventas Factura Electrónica - 2 docs - Neto $")

	guides := entries[1]
	assert.Equal(t, "Transporte", guides.Category)
	assert.Equal(t, "Despachos emitidos", guides.Subcategory)
	assert.Equal(t, 100.0, guides.CO2Equivalent)
	assert.Equal(t, classification.Scope1, guides.Scope)
	assert.Equal(t, "GHG Protocol - Factor logístico por guía", guides.Methodology)
	assert.Equal(t, "EA.133 (transición)", guides.TaxonomyClassification)

	assert.Contains(t, entries[2].Description, "Boleta Electrónica")
}

func TestGenerate_SummaryFallbacks(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseSummary: &rcv.Summary{
			Period: period,
			Lines: []rcv.SummaryLine{
				{Type: rcv.TypeInvoice, Count: 5, NetAmount: 400000, TotalAmount: 476000},
				{Type: rcv.TypeCreditNote, Count: 0, NetAmount: 0, TotalAmount: 0},
				{Type: rcv.TypeDispatchGuide, Count: 2, NetAmount: 0, TotalAmount: 0},
			},
		},
		SalesSummary: &rcv.Summary{
			Period: period,
			Lines: []rcv.SummaryLine{
				{Type: rcv.TypeInvoice, Count: 4, NetAmount: 1000000, TotalAmount: 1190000},
				{Type: rcv.TypeDispatchGuide, Count: 0},
			},
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 3)

	invoices := entries[0]
	assert.Equal(t, "Emisiones", invoices.Category)
	assert.Equal(t, "Cadena de valor (resumen)", invoices.Subcategory)
	assert.Equal(t, 5.0, invoices.PhysicalQuantity)
	assert.Equal(t, "documentos", invoices.PhysicalUnit)
	assert.Equal(t, 100.0, invoices.CO2Equivalent)
	assert.Equal(t, 476000.0, invoices.Debit.Amount)
	assert.Equal(t, "SEEA-CF / RCV Resumen SII - Factor monetario genérico", invoices.Methodology)
	assert.Equal(t, "EA.100 (no alineada)", invoices.TaxonomyClassification)
	assert.Contains(t, invoices.Description, "Período 2024-03")

	guides := entries[1]
	assert.Equal(t, "Transporte", guides.Category)
	assert.Equal(t, "Guías de Despacho", guides.Subcategory)
	assert.Equal(t, "EA.133 (no alineada)", guides.TaxonomyClassification)
	assert.Equal(t, classification.Scope3, guides.Scope)

	sales := entries[2]
	assert.Equal(t, "Actividad productiva", sales.Subcategory)
	assert.Equal(t, "documentos", sales.PhysicalUnit)
	assert.Equal(t, 80.0, sales.CO2Equivalent)
	assert.Equal(t, "SEEA-CF / RCV Ventas Resumen SII", sales.Methodology)
	assert.Equal(t, "Ventas Factura Electrónica - 4 docs - Período 2024-03", sales.Description)
}

func TestGenerate_DetailTakesPrecedenceOverSummary(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("76123456-0", "ACME SPA", rcv.TypeInvoice, 500000, 595000),
		},
		PurchaseSummary: &rcv.Summary{
			Lines: []rcv.SummaryLine{{Type: rcv.TypeInvoice, Count: 1, NetAmount: 500000, TotalAmount: 595000}},
		},
	}

	entries := Generate(ext, period)
	require.Len(t, entries, 1)
	assert.Equal(t, "Cadena de valor", entries[0].Subcategory)
}

func TestGenerate_EmptyInput(t *testing.T) {
	assert.Empty(t, Generate(nil, period))
	assert.Empty(t, Generate(&rcv.Extraction{}, period))
}

func TestGenerate_SignsAndBalances(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("96800570-7", "ENEL Distribución Chile S.A.", rcv.TypeInvoice, 1000000, 1190000),
			purchase("76555444-1", "Paneles Solares del Norte SpA", rcv.TypeInvoice, -250000, -297500),
			purchase("91000000-1", "COPEC S.A.", rcv.TypeInvoice, 330000, 392700),
			purchase("77111222-3", "Transportes del Sur Ltda", rcv.TypeDispatchGuide, 100000, 119000),
			purchase("", "", 0, 0, 0),
		},
		SalesDetail: []rcv.Document{
			purchase("11111111-1", "Cliente Uno", rcv.TypeInvoice, 500000, 595000),
			purchase("22222222-2", "Cliente Dos", rcv.TypeCreditNote, -50000, -59500),
		},
	}

	entries := Generate(ext, period)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		assert.Equal(t, e.Debit.Amount, e.Credit.Amount, e.Description)
		assert.GreaterOrEqual(t, e.PhysicalQuantity, 0.0, e.Description)

		if e.Category == "Inversión Verde" {
			assert.Less(t, e.CO2Equivalent, 0.0, e.Description)
		} else {
			assert.GreaterOrEqual(t, e.CO2Equivalent, 0.0, e.Description)
		}
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	ext := &rcv.Extraction{
		PurchaseDetail: []rcv.Document{
			purchase("96800570-7", "ENEL Distribución Chile S.A.", rcv.TypeInvoice, 1000000, 1190000),
			purchase("77111222-3", "Transportes del Sur Ltda", rcv.TypeDispatchGuide, 100000, 119000),
		},
		SalesSummary: &rcv.Summary{
			Lines: []rcv.SummaryLine{{Type: rcv.TypeInvoice, Count: 4, NetAmount: 1000000, TotalAmount: 1190000}},
		},
	}

	first, err := json.Marshal(Generate(ext, period))
	require.NoError(t, err)
	second, err := json.Marshal(Generate(ext, period))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
