package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dctmd-mcp-server/internal/domain"
)

// PostgresStore implements domain.RecordStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL record store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromPool opens a database/sql handle over an existing pgx pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	db := stdlib.OpenDBFromPool(pool)
	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// SaveRecord inserts a record or replaces the document of an existing one.
func (s *PostgresStore) SaveRecord(ctx context.Context, record *domain.PatientRecord) error {
	if record == nil || record.ID == "" {
		return domain.NewValidationError("id", "record id is required", nil)
	}

	data, err := encodeData(record.Data)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `
		INSERT INTO patient_records (id, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		record.ID,
		data,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by ID.
func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*domain.PatientRecord, error) {
	query := `
		SELECT id, data::text, created_at, updated_at
		FROM patient_records
		WHERE id = $1
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// ListRecordIDs returns record IDs, most recent first.
func (s *PostgresStore) ListRecordIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM patient_records
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteRecord removes a record by ID.
func (s *PostgresStore) DeleteRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM patient_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
