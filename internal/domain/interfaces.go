package domain

import (
	"context"
	"time"
)

// PatientRecord is a stored patient data document as produced by the intake layer.
// Only inputs are stored; diagnostic results are always recomputed.
type PatientRecord struct {
	ID        string    `json:"id"`
	Data      Value     `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordStore persists patient data documents
type RecordStore interface {
	SaveRecord(ctx context.Context, record *PatientRecord) error
	GetRecord(ctx context.Context, id string) (*PatientRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	ListRecordIDs(ctx context.Context, limit int) ([]string, error)
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	GetRecordsConfig() *RecordsConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
