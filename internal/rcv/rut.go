package rcv

import "strings"

// FormatRUT strips dots and whitespace from a RUT.
func FormatRUT(rut string) string {
	clean := strings.ReplaceAll(rut, ".", "")
	clean = strings.Join(strings.Fields(clean), "")
	return strings.TrimSpace(clean)
}

// SplitRUT returns the number and verifier digit of a RUT. The verifier is
// empty when the RUT carries no dash.
func SplitRUT(rut string) (number, dv string) {
	parts := strings.SplitN(FormatRUT(rut), "-", 2)
	number = parts[0]
	if len(parts) > 1 {
		dv = parts[1]
	}
	return number, dv
}
