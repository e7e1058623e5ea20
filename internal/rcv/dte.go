package rcv

import "fmt"

// DTE type codes used by the register.
const (
	TypeInvoice             = 33
	TypeExemptInvoice       = 34
	TypeReceipt             = 39
	TypeExemptReceipt       = 41
	TypePurchaseInvoice     = 46
	TypeDispatchGuide       = 52
	TypeDebitNote           = 56
	TypeCreditNote          = 61
	TypeExportInvoice       = 110
	TypeExportCreditNote    = 111
	TypeExportDebitNote     = 112
)

var typeNames = map[int]string{
	TypeInvoice:          "Factura Electrónica",
	TypeExemptInvoice:    "Factura No Afecta o Exenta Electrónica",
	TypeReceipt:          "Boleta Electrónica",
	TypeExemptReceipt:    "Boleta Exenta Electrónica",
	TypePurchaseInvoice:  "Factura de Compra Electrónica",
	TypeDispatchGuide:    "Guía de Despacho Electrónica",
	TypeDebitNote:        "Nota de Débito Electrónica",
	TypeCreditNote:       "Nota de Crédito Electrónica",
	TypeExportInvoice:    "Factura de Exportación Electrónica",
	TypeExportDebitNote:  "Nota de Débito de Exportación Electrónica",
	TypeExportCreditNote: "Nota de Crédito de Exportación Electrónica",
}

// TypeLabel returns the display name of a DTE type. Unknown codes render as
// "DTE {code}".
func TypeLabel(code int) string {
	if name, ok := typeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("DTE %d", code)
}
