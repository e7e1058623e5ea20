package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/analytics"
)

// Format is a ledger export format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat validates a format name. An empty name selects CSV.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatExcel, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName returns the download name for a company ledger
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// Column is an exported field with its display label
type Column struct {
	Key   string
	Label string
}

// LedgerColumns is the column layout of every ledger export.
var LedgerColumns = []Column{
	{"date", "Fecha"},
	{"period", "Período"},
	{"category", "Categoría"},
	{"subcategory", "Subcategoría"},
	{"description", "Descripción"},
	{"physical_quantity", "Cantidad física"},
	{"physical_unit", "Unidad"},
	{"debit_account", "Cuenta Debe"},
	{"debit_name", "Nombre Debe"},
	{"debit_amount", "Monto Debe"},
	{"credit_account", "Cuenta Haber"},
	{"credit_name", "Nombre Haber"},
	{"credit_amount", "Monto Haber"},
	{"monetary_value", "Valor monetario"},
	{"co2_equivalent", "CO2e (kg)"},
	{"methodology", "Metodología"},
	{"scope", "Alcance"},
	{"sdg_alignment", "ODS"},
	{"taxonomy_classification", "Taxonomía"},
	{"status", "Estado"},
}

// SummaryColumns is the layout of the analytics summary sheet.
var SummaryColumns = []Column{
	{"metric", "Indicador"},
	{"value", "Valor"},
}

func keys(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Key
	}
	return out
}

func labels(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Label
	}
	return out
}

// EntryRows flattens persisted entries into export rows keyed by column.
func EntryRows(entries []ledger.GreenEntry) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"date":                    e.Date,
			"period":                  e.Period,
			"category":                e.Category,
			"subcategory":             e.Subcategory,
			"description":             e.Description,
			"physical_quantity":       e.PhysicalQuantity,
			"physical_unit":           e.PhysicalUnit,
			"debit_account":           e.Debit.Account,
			"debit_name":              e.Debit.Name,
			"debit_amount":            e.Debit.Amount,
			"credit_account":          e.Credit.Account,
			"credit_name":             e.Credit.Name,
			"credit_amount":           e.Credit.Amount,
			"monetary_value":          e.MonetaryValue,
			"co2_equivalent":          e.CO2Equivalent,
			"methodology":             e.Methodology,
			"scope":                   e.Scope,
			"sdg_alignment":           e.SDGAlignment,
			"taxonomy_classification": e.TaxonomyClassification,
			"status":                  string(e.Status),
		})
	}
	return rows
}

// SummaryItem is one labelled figure of the analytics report
type SummaryItem struct {
	Label string
	Value interface{}
}

// ReportSummary lists the report figures in display order.
func ReportSummary(report *analytics.Report) []SummaryItem {
	if report == nil {
		return nil
	}
	items := []SummaryItem{
		{"Green Score", report.GreenScore},
		{"Emisiones totales (tCO2e)", report.TotalEmissionsTCO2e},
		{"Emisiones mitigadas (tCO2e)", report.MitigatedEmissionsTCO2e},
		{"Emisiones netas (tCO2e)", report.NetEmissionsTCO2e},
		{"Inversión sostenible (CLP)", report.SustainableInvestmentCLP},
		{"Activos ambientales (tCO2e)", report.NaturalCapital.AssetsTCO2e},
		{"Pasivos ambientales (tCO2e)", report.NaturalCapital.LiabilitiesTCO2e},
		{"Patrimonio ambiental (tCO2e)", report.NaturalCapital.EquityTCO2e},
		{"Ecuación contable", report.NaturalCapital.Equation},
	}
	for _, insight := range report.Insights {
		items = append(items, SummaryItem{Label: insight.Title, Value: insight.Description})
	}
	return items
}

func summaryRows(items []SummaryItem) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]interface{}{"metric": item.Label, "value": item.Value})
	}
	return rows
}

// LedgerDocument is everything a ledger export renders
type LedgerDocument struct {
	CompanyName string
	CompanyRUT  string
	Period      string
	Entries     []ledger.GreenEntry
	Report      *analytics.Report
}

func (d LedgerDocument) title() string {
	return "Libro Verde - " + d.CompanyName
}

func (d LedgerDocument) subtitle() string {
	parts := make([]string, 0, 2)
	if d.CompanyRUT != "" {
		parts = append(parts, "RUT "+d.CompanyRUT)
	}
	if d.Period != "" {
		parts = append(parts, "Período "+d.Period)
	}
	return strings.Join(parts, " | ")
}

// WriteLedger renders the document in the given format.
func WriteLedger(w io.Writer, format Format, doc LedgerDocument) error {
	switch format {
	case FormatCSV:
		return writeLedgerCSV(w, doc)
	case FormatExcel:
		return writeLedgerExcel(w, doc)
	case FormatPDF:
		return writeLedgerPDF(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// RenderLedger renders the document into memory.
func RenderLedger(format Format, doc LedgerDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLedger(&buf, format, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLedgerCSV(w io.Writer, doc LedgerDocument) error {
	exporter := NewCSVExporter(w, DefaultCSVOptions())
	if err := exporter.WriteMapRows(EntryRows(doc.Entries), keys(LedgerColumns), labels(LedgerColumns)); err != nil {
		return err
	}
	return exporter.Flush()
}

func writeLedgerExcel(w io.Writer, doc LedgerDocument) error {
	exporter := NewMultiSheetExporter(DefaultExcelOptions())
	defer exporter.Close()

	if err := exporter.AddSheet(LedgerSheet, LedgerColumns, EntryRows(doc.Entries)); err != nil {
		return fmt.Errorf("failed to write ledger sheet: %w", err)
	}
	if doc.Report != nil {
		if err := exporter.AddSheet(SummarySheet, SummaryColumns, summaryRows(ReportSummary(doc.Report))); err != nil {
			return fmt.Errorf("failed to write summary sheet: %w", err)
		}
	}
	return exporter.WriteTo(w)
}

func writeLedgerPDF(w io.Writer, doc LedgerDocument) error {
	options := DefaultPDFOptions()
	options.Title = doc.title()
	options.Subtitle = doc.subtitle()

	generator := NewPDFGenerator(options)
	pdfColumns := []Column{
		{"date", "Fecha"},
		{"category", "Categoría"},
		{"description", "Descripción"},
		{"debit_amount", "Debe"},
		{"credit_amount", "Haber"},
		{"co2_equivalent", "CO2e (kg)"},
		{"scope", "Alcance"},
		{"taxonomy_classification", "Taxonomía"},
	}
	if err := generator.GenerateReport(pdfColumns, EntryRows(doc.Entries), ReportSummary(doc.Report)); err != nil {
		return err
	}
	return generator.WriteTo(w)
}
