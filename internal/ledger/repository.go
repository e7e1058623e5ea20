package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a company or entry does not exist.
var ErrNotFound = errors.New("ledger: record not found")

// Repository persists companies and green entries
type Repository interface {
	CreateCompany(ctx context.Context, company *Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*Company, error)
	ListCompanies(ctx context.Context, auditorID *string) ([]Company, error)
	MarkSIILinked(ctx context.Context, id uuid.UUID) error

	CreateEntries(ctx context.Context, entries []GreenEntry) error
	ListEntries(ctx context.Context, filters EntryFilters) ([]GreenEntry, error)
	UpdateEntryStatus(ctx context.Context, id uuid.UUID, status EntryStatus, reviewedBy *string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Company{}, &GreenEntry{}); err != nil {
		return fmt.Errorf("failed to migrate ledger tables: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateCompany(ctx context.Context, company *Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *gormRepository) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) ListCompanies(ctx context.Context, auditorID *string) ([]Company, error) {
	var companies []Company
	query := r.db.WithContext(ctx).Order("business_name ASC")
	if auditorID != nil {
		query = query.Where("assigned_auditor_id = ?", *auditorID)
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *gormRepository) MarkSIILinked(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Company{}).Where("id = ?", id).Update("sii_linked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateEntries inserts entries in a single transaction, keeping the given
// order. Missing IDs are assigned here.
func (r *gormRepository) CreateEntries(ctx context.Context, entries []GreenEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
		if entries[i].Currency == "" {
			entries[i].Currency = DefaultCurrency
		}
		if entries[i].Status == "" {
			entries[i].Status = EntryStatusPending
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entries).Error
	})
}

func (r *gormRepository) ListEntries(ctx context.Context, filters EntryFilters) ([]GreenEntry, error) {
	var entries []GreenEntry
	query := r.db.WithContext(ctx).Order("date DESC").Order("created_at ASC")
	if len(filters.CompanyIDs) > 0 {
		query = query.Where("company_id IN ?", filters.CompanyIDs)
	}
	if filters.Period != nil {
		query = query.Where("period = ?", *filters.Period)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gormRepository) UpdateEntryStatus(ctx context.Context, id uuid.UUID, status EntryStatus, reviewedBy *string) error {
	result := r.db.WithContext(ctx).Model(&GreenEntry{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewedBy,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
