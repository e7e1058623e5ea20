package rcv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Snapshot is a stored register extraction for one company and period
type Snapshot struct {
	ID         uuid.UUID   `json:"id"`
	CompanyID  uuid.UUID   `json:"company_id"`
	Period     string      `json:"period"`
	Extraction *Extraction `json:"extraction"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// Store persists register snapshots
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	LatestSnapshot(ctx context.Context, companyID uuid.UUID) (*Snapshot, error)
}

const snapshotSchema = `
	CREATE TABLE IF NOT EXISTS rcv_snapshots (
		id          UUID PRIMARY KEY,
		company_id  UUID NOT NULL,
		period      TEXT NOT NULL,
		payload     JSONB NOT NULL,
		fetched_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rcv_snapshots_company ON rcv_snapshots (company_id, fetched_at DESC);
`

type snapshotRow struct {
	ID        uuid.UUID `db:"id"`
	CompanyID uuid.UUID `db:"company_id"`
	Period    string    `db:"period"`
	Payload   []byte    `db:"payload"`
	FetchedAt time.Time `db:"fetched_at"`
}

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new snapshot store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the snapshot table when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create rcv_snapshots: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}

	payload, err := json.Marshal(snapshot.Extraction)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction: %w", err)
	}

	query := `
		INSERT INTO rcv_snapshots (id, company_id, period, payload, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.CompanyID, snapshot.Period, payload, snapshot.FetchedAt,
	); err != nil {
		return fmt.Errorf("failed to save rcv snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, companyID uuid.UUID) (*Snapshot, error) {
	query := `
		SELECT id, company_id, period, payload, fetched_at
		FROM rcv_snapshots
		WHERE company_id = $1
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var row snapshotRow
	if err := s.db.GetContext(ctx, &row, query, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to get rcv snapshot: %w", err)
	}

	var extraction Extraction
	if err := json.Unmarshal(row.Payload, &extraction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction: %w", err)
	}

	return &Snapshot{
		ID:         row.ID,
		CompanyID:  row.CompanyID,
		Period:     row.Period,
		Extraction: &extraction,
		FetchedAt:  row.FetchedAt,
	}, nil
}
