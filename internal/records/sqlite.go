package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dctmd-mcp-server/internal/domain"
)

// SQLiteStore implements domain.RecordStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// sqlitePragmas enable WAL and make writers wait briefly on a locked database
const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// NewSQLiteStore opens (or creates) the database file and its schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating record store directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating record schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.PatientRecord, error) {
	record := &domain.PatientRecord{}
	var data string

	if err := s.Scan(&record.ID, &data, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}

	v, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	record.Data = v
	return record, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS patient_records (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_patient_records_created_at ON patient_records(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRecord inserts a record or replaces the document of an existing one.
// CreatedAt of an existing record is preserved.
func (s *SQLiteStore) SaveRecord(ctx context.Context, record *domain.PatientRecord) error {
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

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO patient_records (id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
		RETURNING created_at
	`, record.ID, data, record.CreatedAt, record.UpdatedAt).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by ID.
func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*domain.PatientRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, data, created_at, updated_at
		FROM patient_records
		WHERE id = ?
	`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return record, nil
}

// ListRecordIDs returns record IDs, most recent first.
func (s *SQLiteStore) ListRecordIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM patient_records
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
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

// Count returns the total number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM patient_records").Scan(&count)
	return count, err
}

// DeleteRecord removes a record by ID.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM patient_records WHERE id = ?", id)
	return err
}

// Path is the database file the store was opened on
func (s *SQLiteStore) Path() string { return s.dbPath }

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
