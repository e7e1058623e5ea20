package classification

import "math"

// EstimateQuantity converts a net amount into a physical quantity for the
// profile. Currency-denominated profiles keep the absolute amount; the rest
// divide by the reference unit price. The result is never negative.
func EstimateQuantity(netAmount float64, p Profile) float64 {
	amount := math.Abs(netAmount)
	if p.CurrencyDenominated() {
		return amount
	}
	return roundHalfUp(amount / p.UnitPrice)
}
