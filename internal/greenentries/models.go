package greenentries

import (
	"errors"

	"github.com/google/uuid"

	"kontax/portal-backend/internal/ledger"
)

var (
	// ErrSIINotLinked is returned when a company has no SII credentials linked.
	ErrSIINotLinked = errors.New("company has no SII link")
	// ErrNoTransactionData is returned when no register data is stored for a company.
	ErrNoTransactionData = errors.New("no RCV data stored for company")
	// ErrInvalidEntry is returned for malformed manual entries.
	ErrInvalidEntry = errors.New("invalid green entry")
)

// CreateCompanyRequest is the payload of POST /companies
type CreateCompanyRequest struct {
	RUT               string   `json:"rut" binding:"required"`
	BusinessName      string   `json:"business_name" binding:"required"`
	ContactEmail      *string  `json:"contact_email" binding:"omitempty,email"`
	AssignedAuditorID *string  `json:"assigned_auditor_id"`
	Activities        []string `json:"activities"`
}

// SyncRequest is the payload of POST /companies/:id/rcv/sync. Period defaults
// to the current month.
type SyncRequest struct {
	Password string `json:"clave" binding:"required"`
	Period   string `json:"period" binding:"omitempty,datetime=2006-01"`
	Generate bool   `json:"generate"`
}

// SyncResult summarises a register sync
type SyncResult struct {
	SnapshotID        uuid.UUID `json:"snapshot_id"`
	Period            string    `json:"period"`
	BusinessName      string    `json:"business_name,omitempty"`
	Activities        int       `json:"activities"`
	PurchaseDocuments int       `json:"purchase_documents"`
	SalesDocuments    int       `json:"sales_documents"`
	PurchaseSummary   int       `json:"purchase_summary_lines"`
	SalesSummary      int       `json:"sales_summary_lines"`
	EntriesCreated    int       `json:"entries_created"`
}

// GenerateResult is the outcome of a generation run
type GenerateResult struct {
	Message string              `json:"message"`
	Period  string              `json:"period"`
	Entries []ledger.GreenEntry `json:"entries"`
}

// CreateEntryRequest is the payload of POST /green-entries
type CreateEntryRequest struct {
	CompanyID              uuid.UUID           `json:"company_id" binding:"required"`
	Date                   string              `json:"date" binding:"required"`
	Period                 string              `json:"period" binding:"required"`
	Category               string              `json:"category" binding:"required"`
	Subcategory            string              `json:"subcategory"`
	Description            string              `json:"description" binding:"required"`
	PhysicalQuantity       float64             `json:"physical_quantity" binding:"gte=0"`
	PhysicalUnit           string              `json:"physical_unit"`
	Debit                  *ledger.Posting     `json:"debit"`
	Credit                 *ledger.Posting     `json:"credit"`
	MonetaryValue          float64             `json:"monetary_value"`
	Currency               string              `json:"currency"`
	CO2Equivalent          float64             `json:"co2_equivalent"`
	Methodology            string              `json:"methodology"`
	Scope                  string              `json:"scope"`
	SDGAlignment           string              `json:"sdg_alignment"`
	TaxonomyClassification string              `json:"taxonomy_classification"`
	SupportDoc             *string             `json:"support_doc"`
	Status                 *ledger.EntryStatus `json:"status" binding:"omitempty,oneof=pendiente verificado"`
}

// UpdateStatusRequest is the payload of PATCH /green-entries/:id/status
type UpdateStatusRequest struct {
	Status ledger.EntryStatus `json:"status" binding:"required,oneof=pendiente verificado"`
}
