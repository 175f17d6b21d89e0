// Package records persists patient data documents produced by the intake layer.
// Only inputs are stored; diagnostic verdicts are recomputed on every read.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dctmd-mcp-server/internal/domain"
)

// maxExportLimit is the maximum number of records to export at once.
const maxExportLimit = 1000000

// exportVersion is written into every export envelope.
const exportVersion = "1.0"

// Export represents the JSON export format.
type Export struct {
	Version    string                  `json:"version"`
	ExportedAt time.Time               `json:"exported_at"`
	Count      int                     `json:"count"`
	Records    []*domain.PatientRecord `json:"records"`
}

// ExportJSON writes every record of the store to writer.
func ExportJSON(ctx context.Context, store domain.RecordStore, writer io.Writer) error {
	ids, err := store.ListRecordIDs(ctx, maxExportLimit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	export := &Export{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Records:    make([]*domain.PatientRecord, 0, len(ids)),
	}
	for _, id := range ids {
		record, err := store.GetRecord(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load record %s: %w", id, err)
		}
		export.Records = append(export.Records, record)
	}
	export.Count = len(export.Records)

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON reads an export from reader. Records whose ID already exists are skipped.
func ImportJSON(ctx context.Context, store domain.RecordStore, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, record := range export.Records {
		if record == nil || record.ID == "" {
			skipped++
			continue
		}

		_, err := store.GetRecord(ctx, record.ID)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if err := store.SaveRecord(ctx, record); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// encodeData serializes a document for a TEXT/JSONB column.
func encodeData(v domain.Value) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(b), nil
}

func decodeData(s string) (domain.Value, error) {
	var v domain.Value
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return domain.Value{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return v, nil
}
