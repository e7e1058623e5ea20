package classification

import "math"

// CalculateCO2 returns the kg CO2e for a quantity under the profile.
// Currency-denominated profiles round to whole kilograms, physical units keep
// two decimals. The sign of the result follows the sign of the factor.
func CalculateCO2(quantity float64, p Profile) float64 {
	q := math.Abs(quantity)
	var co2 float64
	if p.Unit == UnitCurrency {
		co2 = roundHalfUp(q * p.Factor)
	} else {
		co2 = roundHalfUp(q*p.Factor*100) / 100
	}
	if p.Factor < 0 {
		return -math.Abs(co2)
	}
	return math.Abs(co2)
}

// SpendCO2 applies a spend-based factor to an amount, rounded to whole kg.
func SpendCO2(amount, factor float64) float64 {
	return roundHalfUp(math.Abs(amount) * factor)
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
