// Package locale formats numbers for human-readable ledger text.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Chile is the locale used for amounts rendered in entry descriptions.
var Chile = language.MustParse("es-CL")

// FormatNumber renders v with es-CL grouping and decimal separators, keeping
// at most three fraction digits.
func FormatNumber(v float64) string {
	return FormatNumberIn(Chile, v)
}

// FormatNumberIn renders v using the separators of tag.
func FormatNumberIn(tag language.Tag, v float64) string {
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
