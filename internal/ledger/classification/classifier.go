package classification

import (
	"regexp"
	"strings"
)

// rule pairs a keyword pattern with the profile it assigns. Rules are
// evaluated in slice order and the first match wins; vocabularies overlap
// ("GAS" appears in fuel retailers and gas utilities alike).
type rule struct {
	name    string
	pattern *regexp.Regexp
	profile Profile
}

var rules = []rule{
	{
		name:    "electricity",
		pattern: regexp.MustCompile(`ELECTR|ENERG|CGE|ENEL|CHILQUINTA|SAESA|FRONTEL|LUZ|POWER|CHILENER|COLBUN`),
		profile: Profile{
			Category: "Energía", Subcategory: "Electricidad", Scope: Scope2,
			TaxonomyCode: "EA.131", SDGAlignment: "ODS 7, ODS 13", Resource: "electricidad",
			Unit: "kWh", UnitPrice: PriceElectricityKWh, Factor: FactorElectricityKWh,
			Status: AlignmentTransition,
		},
	},
	{
		name:    "fossil_fuel",
		pattern: regexp.MustCompile(`COPEC|SHELL|PETROBRAS|ENAP|DIESEL|BENCINA|COMBUST|PETROLEO|TERPEL|PETROL`),
		profile: Profile{
			Category: "Energía", Subcategory: "Combustible fósil", Scope: Scope1,
			TaxonomyCode: "EA.132", SDGAlignment: "ODS 13", Resource: "combustible",
			Unit: "litros", UnitPrice: PriceDieselLiter, Factor: FactorDieselLiter,
			Status: AlignmentNotAligned,
		},
	},
	{
		name:    "gas",
		pattern: regexp.MustCompile(`GAS|GASCO|LIPIGAS|ABASTIBLE|GLP|GNL`),
		profile: Profile{
			Category: "Energía", Subcategory: "Gas", Scope: Scope1,
			TaxonomyCode: "EA.132", SDGAlignment: "ODS 13", Resource: "gas",
			Unit: "m³", UnitPrice: PriceGasM3, Factor: FactorNaturalGasM3,
			Status: AlignmentTransition,
		},
	},
	{
		name:    "water",
		pattern: regexp.MustCompile(`AGUA|ESSBIO|AGUAS ANDINAS|SMAPA|SANITARI|ESVAL|NUEVOSUR|AGUAS DEL VALLE|AGUAS CHANAR`),
		profile: Profile{
			Category: "Agua", Subcategory: "Consumo hídrico", Scope: Scope1,
			TaxonomyCode: "EA.141", SDGAlignment: "ODS 6", Resource: "agua",
			Unit: "m³", UnitPrice: PriceWaterM3, Factor: FactorWaterM3,
			Status: AlignmentTransition,
		},
	},
	{
		name:    "transport",
		pattern: regexp.MustCompile(`TRANSPORT|LOGIST|FLETE|CARGA|COURIER|CHILEXPRESS|STARKEN|CORREOS|BLUE EXPRESS|BOOSTR|DLOG|BEETRACK`),
		profile: Profile{
			Category: "Transporte", Subcategory: "Transporte terceros", Scope: Scope3,
			TaxonomyCode: "EA.133", SDGAlignment: "ODS 11, ODS 13", Resource: "transporte",
			Unit: "km est.", UnitPrice: 250, Factor: FactorLightVehicleKm,
			Status: AlignmentTransition,
		},
	},
	{
		name:    "waste",
		pattern: regexp.MustCompile(`RESIDU|RECICLAJ|BASURA|DESECHO|LIMPIEZA IND|KDM|VEOLIA|STERICYCLE|HIDRONOR`),
		profile: Profile{
			Category: "Residuos", Subcategory: "Gestión de residuos", Scope: Scope3,
			TaxonomyCode: "EA.211", SDGAlignment: "ODS 12", Resource: "residuos",
			Unit: "kg est.", UnitPrice: 200, Factor: FactorLandfillWasteKg,
			Status: AlignmentTransition,
		},
	},
	{
		name:    "renewables",
		pattern: regexp.MustCompile(`SOLAR|PANEL|FOTOVOLT|RENOVABL|EOLIC|SUNPOWER|TRINA`),
		profile: Profile{
			Category: "Inversión Verde", Subcategory: "Energía renovable", Scope: Scope2,
			TaxonomyCode: "EA.311", SDGAlignment: "ODS 7, ODS 13", Resource: "renovable",
			Unit: "kWh evit.", UnitPrice: 120, Factor: -FactorElectricityKWh,
			Status: AlignmentSustainable,
		},
	},
	{
		name:    "construction",
		pattern: regexp.MustCompile(`CONSTRUC|MATERIAL|FERRET|CEMENTOS|ACERO|HORMIGON|SODIMAC|EASY|MTS`),
		profile: Profile{
			Category: "Emisiones", Subcategory: "Materiales construcción", Scope: Scope3,
			TaxonomyCode: "EA.112", SDGAlignment: "ODS 9, ODS 12", Resource: "materiales",
			Unit: UnitCurrency, UnitPrice: 1, Factor: 0.0006,
			Status: AlignmentNotAligned,
		},
	},
	{
		name:    "agrochemicals",
		pattern: regexp.MustCompile(`QUIMIC|LABORAT|PLAGUICID|FERTILIZ|AGROQUIM|BAYER|SYNGENTA|ANASAC`),
		profile: Profile{
			Category: "Emisiones", Subcategory: "Agroquímicos", Scope: Scope3,
			TaxonomyCode: "EA.113", SDGAlignment: "ODS 12, ODS 15", Resource: "químicos",
			Unit: UnitCurrency, UnitPrice: 1, Factor: 0.0007,
			Status: AlignmentNotAligned,
		},
	},
	{
		name:    "food_service",
		pattern: regexp.MustCompile(`ALIMENT|RESTAURANT|CATERING|CAFÉ|CAFETERÍA|SODEXO|ARAMARK`),
		profile: Profile{
			Category: "Residuos", Subcategory: "Residuos orgánicos", Scope: Scope3,
			TaxonomyCode: "EA.213", SDGAlignment: "ODS 2, ODS 12", Resource: "orgánicos",
			Unit: "kg est.", UnitPrice: 300, Factor: 0.58,
			Status: AlignmentTransition,
		},
	},
	{
		name:    "real_estate",
		pattern: regexp.MustCompile(`ARRIENDO|INMOBIL|LEASING|RENTA`),
		profile: Profile{
			Category: "Emisiones", Subcategory: "Infraestructura", Scope: Scope3,
			TaxonomyCode: "EA.100", SDGAlignment: "ODS 11", Resource: "infraestructura",
			Unit: UnitCurrency, UnitPrice: 1, Factor: 0.00005,
			Status: AlignmentTransition,
		},
	},
}

// Generic is the value-chain profile used when no rule matches.
var Generic = Profile{
	Category: "Emisiones", Subcategory: "Cadena de valor", Scope: Scope3,
	TaxonomyCode: "EA.100", SDGAlignment: "ODS 12, ODS 13", Resource: "general",
	Unit: UnitCurrency, UnitPrice: 1, Factor: FactorGenericSpend,
	Status: AlignmentNotAligned,
}

// Classify returns the emission profile for a counterparty name. Matching is
// case-insensitive; an empty or unrecognised name yields Generic.
func Classify(name string) Profile {
	profile, _ := Match(name)
	return profile
}

// Match is Classify that also reports the name of the rule that matched, or
// "generic" for the fallback.
func Match(name string) (Profile, string) {
	n := strings.ToUpper(name)
	if n != "" {
		for _, r := range rules {
			if r.pattern.MatchString(n) {
				return r.profile, r.name
			}
		}
	}
	return Generic, "generic"
}
