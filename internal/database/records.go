package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/records"
)

// OpenRecordStore builds the record store selected by cfg.Records.Driver.
// The postgres store shares a pgx pool and is guarded by a circuit breaker;
// with Database.AutoMigrate set the schema is brought up first.
// Driver "none" returns a nil store.
func OpenRecordStore(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (domain.RecordStore, error) {
	switch cfg.Records.Driver {
	case "", "none":
		return nil, nil

	case "sqlite":
		store, err := records.NewSQLiteStore(cfg.Records.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite record store: %w", err)
		}
		logger.WithField("path", cfg.Records.SQLitePath).Info("SQLite record store opened")
		return store, nil

	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrateUp(ctx, cfg.Database, logger); err != nil {
				return nil, err
			}
		}
		db, err := Connect(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		pgStore, err := records.NewPostgresStoreFromPool(db.Pool)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("opening postgres record store: %w", err)
		}
		return &pooledStore{
			BreakerStore: records.NewBreakerStore(pgStore, records.BreakerConfig{
				Name:        "postgres-records",
				MaxFailures: cfg.Records.BreakerMaxFail,
				Timeout:     cfg.Records.BreakerTimeout,
				OpTimeout:   cfg.Records.Timeout,
			}, logger),
			db: db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown records driver %q", cfg.Records.Driver)
	}
}

func migrateUp(ctx context.Context, cfg domain.DatabaseConfig, logger *logrus.Logger) error {
	mg, err := NewMigrator(URL(cfg), cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Migrate(ctx, Up)
}

// pooledStore closes the shared pool after the store
type pooledStore struct {
	*records.BreakerStore
	db *DB
}

func (p *pooledStore) Close() error {
	err := p.BreakerStore.Close()
	p.db.Close()
	return err
}
