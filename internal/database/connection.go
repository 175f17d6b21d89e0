// Package database owns the PostgreSQL side of the record store: the pgx
// connection pool, schema migrations and store selection from configuration.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/domain"
)

const (
	defaultMaxConns    = 10
	defaultMaxConnIdle = 30 * time.Minute
)

// URL renders the settings as a postgres:// URL. Both pgx and golang-migrate accept it.
func URL(cfg domain.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// PoolConfig maps the application settings onto a pgx pool config.
// MaxIdleConns becomes the pool minimum and is capped at the maximum.
func PoolConfig(cfg domain.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pc.MaxConns = defaultMaxConns
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.MaxOpenConns)
	}
	pc.MinConns = min(int32(cfg.MaxIdleConns), pc.MaxConns)
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	pc.MaxConnIdleTime = defaultMaxConnIdle
	return pc, nil
}

// DB is a verified pgx pool
type DB struct {
	Pool *pgxpool.Pool
	log  *logrus.Logger
}

// Connect opens the pool and pings it once before returning
func Connect(ctx context.Context, cfg domain.DatabaseConfig, logger *logrus.Logger) (*DB, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.WithFields(logrus.Fields{
		"host":      cfg.Host,
		"database":  cfg.Database,
		"max_conns": pc.MaxConns,
	}).Info("PostgreSQL pool ready")

	return &DB{Pool: pool, log: logger}, nil
}

// Close closes the pool
func (db *DB) Close() {
	if db.Pool == nil {
		return
	}
	db.Pool.Close()
	db.log.Debug("PostgreSQL pool closed")
}

// Ping checks one connection
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Stats returns pool statistics
func (db *DB) Stats() *pgxpool.Stat {
	return db.Pool.Stat()
}
