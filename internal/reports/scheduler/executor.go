package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/ledger/analytics"
	"kontax/portal-backend/internal/rcv"
	"kontax/portal-backend/internal/reports/export"
	"kontax/portal-backend/pkg/storage"
)

// LedgerSource reads the companies and entries to archive
type LedgerSource interface {
	ListCompanies(ctx context.Context, auditorID *string) ([]ledger.Company, error)
	ListEntries(ctx context.Context, filters ledger.EntryFilters) ([]ledger.GreenEntry, error)
}

// ExecutorConfig configuration for the archive executor
type ExecutorConfig struct {
	Bucket            string        `json:"bucket"`
	Format            export.Format `json:"format"`
	Timeout           time.Duration `json:"timeout"`
	RetryAttempts     int           `json:"retry_attempts"`
	RetryDelay        time.Duration `json:"retry_delay"`
	DownloadURLExpiry time.Duration `json:"download_url_expiry"`
}

// DefaultExecutorConfig returns default configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Format:            export.FormatExcel,
		Timeout:           30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
		DownloadURLExpiry: 24 * time.Hour,
	}
}

// ArchivedLedger is one uploaded company ledger
type ArchivedLedger struct {
	CompanyID   uuid.UUID `json:"company_id"`
	Entries     int       `json:"entries"`
	FileKey     string    `json:"file_key"`
	SizeBytes   int64     `json:"size_bytes"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// ExecutionResult summarises an archive run
type ExecutionResult struct {
	ExecutionID uuid.UUID         `json:"execution_id"`
	Period      string            `json:"period"`
	Status      string            `json:"status"`
	Archived    []ArchivedLedger  `json:"archived"`
	Skipped     int               `json:"skipped"`
	Failures    map[string]string `json:"failures,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	DurationMs  int64             `json:"duration_ms"`
}

// Executor renders company ledgers and uploads them to object storage
type Executor struct {
	source  LedgerSource
	storage storage.S3Client
	logger  *zap.Logger
	config  ExecutorConfig
	now     func() time.Time
}

// NewExecutor creates a new archive executor
func NewExecutor(source LedgerSource, store storage.S3Client, logger *zap.Logger, config ExecutorConfig) *Executor {
	if config.Format == "" {
		config.Format = export.FormatExcel
	}
	return &Executor{
		source:  source,
		storage: store,
		logger:  logger,
		config:  config,
		now:     time.Now,
	}
}

// ArchiveKey returns the object key of a company's archived ledger
func ArchiveKey(companyID uuid.UUID, period string, format export.Format) string {
	return fmt.Sprintf("ledger-archives/%s/%s/%s", companyID, period, format.FileName("green-ledger"))
}

// LastClosedPeriod returns the month before the current one
func (e *Executor) LastClosedPeriod() string {
	return rcv.PreviousPeriod(e.now().Format(rcv.PeriodLayout))
}

// Execute archives every company ledger with entries in period. A failing
// company is recorded and the run continues; an error is returned only when
// the company list cannot be read.
func (e *Executor) Execute(ctx context.Context, period string) (*ExecutionResult, error) {
	startTime := e.now()
	result := &ExecutionResult{
		ExecutionID: uuid.New(),
		Period:      period,
		Status:      "processing",
		Archived:    []ArchivedLedger{},
		Failures:    make(map[string]string),
		StartedAt:   startTime,
	}

	e.logger.Info("Starting ledger archive",
		zap.String("execution_id", result.ExecutionID.String()),
		zap.String("period", period))

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	companies, err := e.source.ListCompanies(ctx, nil)
	if err != nil {
		result.Status = "failed"
		e.finish(result, startTime)
		return result, fmt.Errorf("failed to list companies: %w", err)
	}

	for _, company := range companies {
		archived, err := e.archiveCompany(ctx, company, period)
		switch {
		case err != nil:
			e.logger.Error("Failed to archive ledger",
				zap.String("company_id", company.ID.String()),
				zap.Error(err))
			result.Failures[company.ID.String()] = err.Error()
		case archived == nil:
			result.Skipped++
		default:
			result.Archived = append(result.Archived, *archived)
		}
	}

	result.Status = "completed"
	if len(result.Failures) > 0 {
		result.Status = "partial"
	}
	e.finish(result, startTime)

	e.logger.Info("Ledger archive completed",
		zap.String("execution_id", result.ExecutionID.String()),
		zap.Int("archived", len(result.Archived)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failures)),
		zap.Int64("duration_ms", result.DurationMs))

	return result, nil
}

func (e *Executor) finish(result *ExecutionResult, startTime time.Time) {
	result.CompletedAt = e.now()
	result.DurationMs = result.CompletedAt.Sub(startTime).Milliseconds()
}

// archiveCompany returns nil without error when the company has no entries
// in the period.
func (e *Executor) archiveCompany(ctx context.Context, company ledger.Company, period string) (*ArchivedLedger, error) {
	entries, err := e.source.ListEntries(ctx, ledger.EntryFilters{
		CompanyIDs: []uuid.UUID{company.ID},
		Period:     &period,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	data, err := export.RenderLedger(e.config.Format, export.LedgerDocument{
		CompanyName: company.BusinessName,
		CompanyRUT:  company.RUT,
		Period:      period,
		Entries:     entries,
		Report:      analytics.BuildReport(company.ID.String(), ledger.DataOf(entries)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render ledger: %w", err)
	}

	key := ArchiveKey(company.ID, period, e.config.Format)
	if err := e.upload(ctx, key, data); err != nil {
		return nil, err
	}

	archived := &ArchivedLedger{
		CompanyID: company.ID,
		Entries:   len(entries),
		FileKey:   key,
		SizeBytes: int64(len(data)),
	}
	if e.config.DownloadURLExpiry > 0 {
		url, err := e.storage.GetPresignedURL(ctx, e.config.Bucket, key, e.config.DownloadURLExpiry)
		if err != nil {
			e.logger.Warn("Failed to generate download URL", zap.String("key", key), zap.Error(err))
		} else {
			archived.DownloadURL = url
		}
	}
	return archived, nil
}

func (e *Executor) upload(ctx context.Context, key string, data []byte) error {
	attempts := max(1, e.config.RetryAttempts)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = e.storage.Upload(ctx, e.config.Bucket, key, bytes.NewReader(data), e.config.Format.ContentType())
		if err == nil {
			return nil
		}
		e.logger.Warn("Archive upload failed",
			zap.String("key", key),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.config.RetryDelay):
			}
		}
	}
	return fmt.Errorf("upload failed after %d attempts: %w", attempts, err)
}
