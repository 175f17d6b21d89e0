package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/migrations"
)

// Direction selects which way Migrator.Migrate moves the schema
type Direction string

const (
	// Up applies every pending migration
	Up Direction = "up"
	// Down rolls back the latest migration
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down"
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("unknown migration direction %q, want up or down", s)
	}
}

// Migrator applies the patient_records schema with golang-migrate.
// Without a directory it reads the migrations embedded in the binary.
type Migrator struct {
	m   *migrate.Migrate
	log *logrus.Logger
}

// NewMigrator opens a migrator against databaseURL. dir may be empty.
func NewMigrator(databaseURL, dir string, logger *logrus.Logger) (*Migrator, error) {
	var (
		m   *migrate.Migrate
		err error
	)
	if dir == "" {
		var src source.Driver
		src, err = iofs.New(migrations.FS, ".")
		if err != nil {
			return nil, fmt.Errorf("reading embedded migrations: %w", err)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, databaseURL)
	} else {
		m, err = migrate.New("file://"+dir, databaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}

	return &Migrator{m: m, log: logger}, nil
}

// Migrate moves the schema one way. Nothing to do is not an error.
func (mg *Migrator) Migrate(ctx context.Context, dir Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch dir {
	case Up:
		err = mg.m.Up()
	case Down:
		err = mg.m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.WithField("direction", dir).Info("Schema already current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrating %s: %w", dir, err)
	}

	version, dirty, verr := mg.Version()
	entry := mg.log.WithField("direction", dir)
	if verr != nil {
		entry.WithError(verr).Warn("Migrated but could not read schema version")
		return nil
	}
	entry.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Schema migrated")
	return nil
}

// Version reports the applied schema version; 0 means nothing applied
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
