// Package greenentries runs register syncs, green ledger generation and
// analytics for companies.
package greenentries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/analytics"
	"kontax/portal-backend/internal/ledger/generator"
	"kontax/portal-backend/internal/rcv"
	"kontax/portal-backend/internal/reports/export"
)

// RCVSource fetches register data from the SII gateway
type RCVSource interface {
	Extract(ctx context.Context, companyRUT string, creds rcv.Credentials, period string) (*rcv.Extraction, error)
}

// Service coordinates companies, snapshots and the green ledger
type Service struct {
	repo      ledger.Repository
	snapshots rcv.Store
	source    RCVSource
	cache     *analytics.ReportCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new green entries service
func NewService(repo ledger.Repository, snapshots rcv.Store, source RCVSource, cache *analytics.ReportCache, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		snapshots: snapshots,
		source:    source,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) currentPeriod() string {
	return s.now().Format(rcv.PeriodLayout)
}

// CreateCompany registers a company. The RUT is normalised before storing.
func (s *Service) CreateCompany(ctx context.Context, req *CreateCompanyRequest) (*ledger.Company, error) {
	activities := req.Activities
	if activities == nil {
		activities = []string{}
	}
	raw, err := json.Marshal(activities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activities: %w", err)
	}

	company := &ledger.Company{
		ID:                uuid.New(),
		RUT:               rcv.FormatRUT(req.RUT),
		BusinessName:      req.BusinessName,
		ContactEmail:      req.ContactEmail,
		Activities:        datatypes.JSON(raw),
		AssignedAuditorID: req.AssignedAuditorID,
	}
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.logger.Info("Company created",
		zap.String("company_id", company.ID.String()),
		zap.String("rut", company.RUT))
	return company, nil
}

// GetCompany returns a company or ledger.ErrNotFound
func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (*ledger.Company, error) {
	return s.repo.GetCompany(ctx, id)
}

// ListCompanies lists companies, restricted to an auditor when given
func (s *Service) ListCompanies(ctx context.Context, auditorID *string) ([]ledger.Company, error) {
	return s.repo.ListCompanies(ctx, auditorID)
}

// SyncRCV pulls the register for a company, stores it as a snapshot and marks
// the company as SII-linked. With req.Generate the ledger is generated from
// the fresh extraction right away.
func (s *Service) SyncRCV(ctx context.Context, companyID uuid.UUID, req *SyncRequest, userID *string) (*SyncResult, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	period := req.Period
	if period == "" {
		period = s.currentPeriod()
	}

	creds := rcv.Credentials{RUT: company.RUT, Password: req.Password}
	extraction, err := s.source.Extract(ctx, company.RUT, creds, period)
	if err != nil {
		return nil, fmt.Errorf("failed to extract RCV: %w", err)
	}

	snapshot := &rcv.Snapshot{
		ID:         uuid.New(),
		CompanyID:  company.ID,
		Period:     period,
		Extraction: extraction,
		FetchedAt:  s.now(),
	}
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save RCV snapshot: %w", err)
	}
	if err := s.repo.MarkSIILinked(ctx, company.ID); err != nil {
		return nil, fmt.Errorf("failed to link company: %w", err)
	}

	result := &SyncResult{
		SnapshotID:        snapshot.ID,
		Period:            period,
		PurchaseDocuments: len(extraction.PurchaseDetail),
		SalesDocuments:    len(extraction.SalesDetail),
	}
	if ts := extraction.TaxSituation; ts != nil {
		result.BusinessName = ts.BusinessName
		result.Activities = len(ts.Activities)
	}
	if extraction.PurchaseSummary != nil {
		result.PurchaseSummary = len(extraction.PurchaseSummary.Lines)
	}
	if extraction.SalesSummary != nil {
		result.SalesSummary = len(extraction.SalesSummary.Lines)
	}

	if req.Generate && extraction.HasData() {
		entries, err := s.persistGenerated(ctx, company.ID, extraction, period, userID)
		if err != nil {
			return nil, err
		}
		result.EntriesCreated = len(entries)
	}

	s.logger.Info("RCV synced",
		zap.String("company_id", company.ID.String()),
		zap.String("period", period),
		zap.Int("purchase_documents", result.PurchaseDocuments),
		zap.Int("sales_documents", result.SalesDocuments),
		zap.Int("entries_created", result.EntriesCreated))
	return result, nil
}

// GenerateForCompany generates the current period's green entries from the
// latest stored snapshot and persists them as verified.
func (s *Service) GenerateForCompany(ctx context.Context, companyID uuid.UUID, userID *string) (*GenerateResult, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.SIILinked {
		return nil, ErrSIINotLinked
	}

	snapshot, err := s.snapshots.LatestSnapshot(ctx, company.ID)
	if errors.Is(err, rcv.ErrNoSnapshot) {
		return nil, ErrNoTransactionData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load RCV snapshot: %w", err)
	}
	if !snapshot.Extraction.HasData() {
		return nil, ErrNoTransactionData
	}

	period := s.currentPeriod()
	entries, err := s.persistGenerated(ctx, company.ID, snapshot.Extraction, period, userID)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Message: fmt.Sprintf("Se generaron %d asientos verdes", len(entries)),
		Period:  period,
		Entries: entries,
	}, nil
}

func (s *Service) persistGenerated(ctx context.Context, companyID uuid.UUID, extraction *rcv.Extraction, period string, userID *string) ([]ledger.GreenEntry, error) {
	generated := generator.Generate(extraction, period)
	now := s.now()

	entries := make([]ledger.GreenEntry, 0, len(generated))
	for _, data := range generated {
		entries = append(entries, ledger.GreenEntry{
			ID:        uuid.New(),
			CompanyID: companyID,
			Date:      now,
			Period:    period,
			EntryData: data,
			Currency:  ledger.DefaultCurrency,
			Status:    ledger.EntryStatusVerified,
			CreatedBy: userID,
		})
	}

	if err := s.repo.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to store green entries: %w", err)
	}
	s.cache.Invalidate(companyID.String())

	s.logger.Info("Green entries generated",
		zap.String("company_id", companyID.String()),
		zap.String("period", period),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// ListEntries lists a company's entries, or those of every company assigned
// to the auditor when no company is given.
func (s *Service) ListEntries(ctx context.Context, companyID *uuid.UUID, auditorID *string) ([]ledger.GreenEntry, error) {
	filters := ledger.EntryFilters{}
	switch {
	case companyID != nil:
		filters.CompanyIDs = []uuid.UUID{*companyID}
	case auditorID != nil:
		companies, err := s.repo.ListCompanies(ctx, auditorID)
		if err != nil {
			return nil, err
		}
		if len(companies) == 0 {
			return []ledger.GreenEntry{}, nil
		}
		for _, c := range companies {
			filters.CompanyIDs = append(filters.CompanyIDs, c.ID)
		}
	default:
		return []ledger.GreenEntry{}, nil
	}
	return s.repo.ListEntries(ctx, filters)
}

// CreateEntry stores a manually entered green entry. Missing postings are
// derived from the monetary value so both sides always balance.
func (s *Service) CreateEntry(ctx context.Context, req *CreateEntryRequest, userID *string) (*ledger.GreenEntry, error) {
	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(rcv.PeriodLayout, req.Period); err != nil {
		return nil, fmt.Errorf("%w: period must be YYYY-MM", ErrInvalidEntry)
	}
	if _, err := s.repo.GetCompany(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	debit := ledger.Posting{Account: ledger.AccountGreen, Name: req.Category, Amount: req.MonetaryValue}
	if req.Debit != nil {
		debit = *req.Debit
	}
	credit := ledger.Posting{Account: ledger.AccountSuppliers, Name: "Proveedores", Amount: debit.Amount}
	if req.Credit != nil {
		credit = *req.Credit
	}
	if debit.Amount != credit.Amount {
		return nil, fmt.Errorf("%w: debit and credit amounts differ", ErrInvalidEntry)
	}

	entry := &ledger.GreenEntry{
		ID:        uuid.New(),
		CompanyID: req.CompanyID,
		Date:      date,
		Period:    req.Period,
		EntryData: ledger.EntryData{
			Category:               req.Category,
			Subcategory:            req.Subcategory,
			Description:            req.Description,
			PhysicalQuantity:       req.PhysicalQuantity,
			PhysicalUnit:           req.PhysicalUnit,
			Debit:                  debit,
			Credit:                 credit,
			MonetaryValue:          req.MonetaryValue,
			CO2Equivalent:          req.CO2Equivalent,
			Methodology:            req.Methodology,
			Scope:                  req.Scope,
			SDGAlignment:           req.SDGAlignment,
			TaxonomyClassification: req.TaxonomyClassification,
		},
		Currency:   req.Currency,
		SupportDoc: req.SupportDoc,
		Status:     ledger.EntryStatusPending,
		CreatedBy:  userID,
	}
	if entry.Currency == "" {
		entry.Currency = ledger.DefaultCurrency
	}
	if req.Status != nil {
		entry.Status = *req.Status
	}

	if err := s.repo.CreateEntries(ctx, []ledger.GreenEntry{*entry}); err != nil {
		return nil, fmt.Errorf("failed to store green entry: %w", err)
	}
	s.cache.Invalidate(req.CompanyID.String())

	s.logger.Info("Green entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("company_id", req.CompanyID.String()))
	return entry, nil
}

// UpdateEntryStatus moves an entry through review
func (s *Service) UpdateEntryStatus(ctx context.Context, entryID uuid.UUID, status ledger.EntryStatus, reviewerID *string) error {
	if err := s.repo.UpdateEntryStatus(ctx, entryID, status, reviewerID); err != nil {
		return err
	}
	// the owning company is unknown here; drop every cached report
	s.cache.Clear()
	return nil
}

func parseEntryDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidEntry, value)
}

// Analytics returns the company's analytics report, served from the cache
// while fresh.
func (s *Service) Analytics(ctx context.Context, companyID uuid.UUID) (*analytics.Report, error) {
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}

	key := companyID.String()
	return s.cache.GetOrBuild(key, func() (*analytics.Report, error) {
		entries, err := s.repo.ListEntries(ctx, ledger.EntryFilters{CompanyIDs: []uuid.UUID{companyID}})
		if err != nil {
			return nil, fmt.Errorf("failed to load green entries: %w", err)
		}
		return analytics.BuildReport(key, ledger.DataOf(entries)), nil
	})
}

// ExportLedger renders a company's ledger and analytics. A non-empty period
// restricts the entries to that period.
func (s *Service) ExportLedger(ctx context.Context, companyID uuid.UUID, period string, format export.Format) ([]byte, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	filters := ledger.EntryFilters{CompanyIDs: []uuid.UUID{companyID}}
	if period != "" {
		filters.Period = &period
	}
	entries, err := s.repo.ListEntries(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load green entries: %w", err)
	}

	doc := export.LedgerDocument{
		CompanyName: company.BusinessName,
		CompanyRUT:  company.RUT,
		Period:      period,
		Entries:     entries,
		Report:      analytics.BuildReport(companyID.String(), ledger.DataOf(entries)),
	}
	data, err := export.RenderLedger(format, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render ledger: %w", err)
	}
	return data, nil
}
