// Package ledger holds the green ledger data model and its persistence.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Account codes used on both sides of generated entries.
const (
	AccountGreen       = "CTA-VERDE"
	AccountSuppliers   = "CTA-PROV"
	AccountCustomers   = "CTA-CLIENTES"
	AccountGreenIncome = "CTA-VERDE-ING"
)

// EntryStatus is the review status of a persisted entry
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pendiente"
	EntryStatusVerified EntryStatus = "verificado"
)

// DefaultCurrency is the currency of every monetary field.
const DefaultCurrency = "CLP"

// Posting is one side of a double entry
type Posting struct {
	Account string  `json:"account" gorm:"column:account"`
	Name    string  `json:"name" gorm:"column:name"`
	Amount  float64 `json:"amount" gorm:"column:amount"`
}

// EntryData is a generated green ledger entry, before persistence assigns an
// identity. Debit and credit always carry the same amount.
type EntryData struct {
	Category               string  `json:"category" gorm:"not null;index"`
	Subcategory            string  `json:"subcategory"`
	Description            string  `json:"description" gorm:"not null"`
	PhysicalQuantity       float64 `json:"physical_quantity"`
	PhysicalUnit           string  `json:"physical_unit"`
	Debit                  Posting `json:"debit" gorm:"embedded;embeddedPrefix:debit_"`
	Credit                 Posting `json:"credit" gorm:"embedded;embeddedPrefix:credit_"`
	MonetaryValue          float64 `json:"monetary_value"`
	CO2Equivalent          float64 `json:"co2_equivalent"`
	Methodology            string  `json:"methodology"`
	Scope                  string  `json:"scope"`
	SDGAlignment           string  `json:"sdg_alignment"`
	TaxonomyClassification string  `json:"taxonomy_classification"`
}

// Amount returns the entry amount: the debit side, else the credit side, else
// the monetary value.
func (e EntryData) Amount() float64 {
	switch {
	case e.Debit.Amount != 0:
		return e.Debit.Amount
	case e.Credit.Amount != 0:
		return e.Credit.Amount
	default:
		return e.MonetaryValue
	}
}

// GreenEntry is a persisted green ledger entry
type GreenEntry struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID   `json:"company_id" gorm:"type:uuid;not null;index"`
	Date       time.Time   `json:"date" gorm:"not null"`
	Period     string      `json:"period" gorm:"not null;index"`
	EntryData  `gorm:"embedded"`
	Currency   string      `json:"currency" gorm:"default:'CLP'"`
	SupportDoc *string     `json:"support_doc"`
	Status     EntryStatus `json:"status" gorm:"default:'pendiente'"`
	CreatedBy  *string     `json:"created_by"`
	ReviewedBy *string     `json:"reviewed_by"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (GreenEntry) TableName() string {
	return "green_entries"
}

// Company is a taxpayer whose ledger is kept
type Company struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RUT               string         `json:"rut" gorm:"not null;uniqueIndex"`
	BusinessName      string         `json:"business_name" gorm:"not null"`
	ContactEmail      *string        `json:"contact_email"`
	Activities        datatypes.JSON `json:"activities" gorm:"type:jsonb;default:'[]'"`
	AssignedAuditorID *string        `json:"assigned_auditor_id" gorm:"index"`
	SIILinked         bool           `json:"sii_linked" gorm:"default:false"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Company) TableName() string {
	return "companies"
}

// EntryFilters narrows entry listings
type EntryFilters struct {
	CompanyIDs []uuid.UUID
	Period     *string
	Status     *EntryStatus
}

// DataOf extracts the generated payload of persisted entries.
func DataOf(entries []GreenEntry) []EntryData {
	out := make([]EntryData, len(entries))
	for i, e := range entries {
		out[i] = e.EntryData
	}
	return out
}
