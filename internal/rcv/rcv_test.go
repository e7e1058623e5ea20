package rcv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{TypeInvoice, "Factura Electrónica"},
		{TypeDispatchGuide, "Guía de Despacho Electrónica"},
		{TypeCreditNote, "Nota de Crédito Electrónica"},
		{999, "DTE 999"},
		{0, "DTE 0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeLabel(tt.code))
	}
}

func TestFormatRUT(t *testing.T) {
	assert.Equal(t, "76123456-7", FormatRUT(" 76.123.456-7 "))
	assert.Equal(t, "761234567", FormatRUT("76 123 456 7"))
}

func TestSplitRUT(t *testing.T) {
	number, dv := SplitRUT("76.123.456-K")
	assert.Equal(t, "76123456", number)
	assert.Equal(t, "K", dv)

	number, dv = SplitRUT("76123456")
	assert.Equal(t, "76123456", number)
	assert.Empty(t, dv)
}

func TestPreviousPeriod(t *testing.T) {
	assert.Equal(t, "2024-02", PreviousPeriod("2024-03"))
	assert.Equal(t, "2023-12", PreviousPeriod("2024-01"))
	assert.Equal(t, "garbage", PreviousPeriod("garbage"))
}

func TestExtraction_HasData(t *testing.T) {
	var nilExtraction *Extraction
	assert.False(t, nilExtraction.HasData())
	assert.False(t, (&Extraction{}).HasData())
	assert.False(t, (&Extraction{PurchaseSummary: &Summary{Period: "2024-01"}}).HasData())
	assert.True(t, (&Extraction{SalesSummary: &Summary{Lines: []SummaryLine{{Type: 33, Count: 1}}}}).HasData())
	assert.True(t, (&Extraction{PurchaseDetail: []Document{{Type: 33}}}).HasData())
}
