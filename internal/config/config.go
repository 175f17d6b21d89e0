// Package config loads service configuration: a viper-backed Manager for the
// HTTP server and an environment-only LiteConfig for the MCP server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dctmd-mcp-server/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. DCTMD_SERVER_PORT
const EnvPrefix = "DCTMD"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// ManagerOption customizes a Manager
type ManagerOption func(*Manager)

// WithConfigFile reads an explicit config file instead of searching the default paths
func WithConfigFile(path string) ManagerOption {
	return func(m *Manager) {
		m.configFile = path
	}
}

// NewManager creates a new configuration manager
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/dctmd/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; defaults and environment variables still apply
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.cert_file", "")
	v.SetDefault("server.key_file", "")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "dctmd")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrations_path", "")
	v.SetDefault("database.auto_migrate", false)

	// Record store defaults
	v.SetDefault("records.driver", "sqlite")
	v.SetDefault("records.sqlite_path", "data/records.db")
	v.SetDefault("records.timeout", "5s")
	v.SetDefault("records.breaker_max_failures", 5)
	v.SetDefault("records.breaker_timeout", "30s")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// MCP defaults
	v.SetDefault("mcp.server_name", DefaultServerName)
	v.SetDefault("mcp.server_version", DefaultServerVersion)
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetRecordsConfig returns record store configuration
func (m *Manager) GetRecordsConfig() *domain.RecordsConfig {
	return &m.config.Records
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.TLSEnabled && (config.Server.CertFile == "" || config.Server.KeyFile == "") {
		return fmt.Errorf("cert_file and key_file are required when TLS is enabled")
	}

	switch config.Records.Driver {
	case "sqlite":
		if config.Records.SQLitePath == "" {
			return fmt.Errorf("records sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	case "none":
	default:
		return fmt.Errorf("invalid records driver: %q (want sqlite, postgres or none)", config.Records.Driver)
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests_per_second and burst")
	}

	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.v.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.v.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}

var _ domain.ConfigManager = (*Manager)(nil)
