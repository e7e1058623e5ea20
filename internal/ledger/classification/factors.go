package classification

// Emission factors in kg CO2e per unit, HuellaChile MMA 2024.
const (
	FactorElectricityKWh  = 0.3896
	FactorGasolineLiter   = 2.31
	FactorDieselLiter     = 2.68
	FactorNaturalGasM3    = 2.04
	FactorLPGKg           = 2.95
	FactorWaterM3         = 0.344
	FactorLightVehicleKm  = 0.21
	FactorHeavyVehicleKm  = 0.33
	FactorLandfillWasteKg = 1.15
	FactorRecycledPaperKg = -0.7
)

// Reference prices in CLP per physical unit.
const (
	PriceElectricityKWh = 150
	PriceDieselLiter    = 1100
	PriceGasolineLiter  = 1200
	PriceGasM3          = 800
	PriceWaterM3        = 1500
)

// Spend-based factors in kg CO2e per CLP. These have no published source
// comparable to the HuellaChile factors and are kept for compatibility with
// previously generated ledgers.
const (
	FactorGenericSpend         = 0.00025
	FactorSalesDispatchSpend   = 0.0004
	FactorSalesProductiveSpend = 0.00008
)

// Logistics estimate for received dispatch guides.
const (
	KmPerDispatchGuide = 120
)
