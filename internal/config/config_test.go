package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager(WithConfigFile(writeConfig(t, "{}\n")))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", m.GetRecordsConfig().Driver)
	assert.Equal(t, uint32(5), cfg.Records.BreakerMaxFail)
	assert.Equal(t, 5*time.Second, cfg.Records.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Equal(t, DefaultServerName, cfg.MCP.ServerName)
	assert.Empty(t, m.GetDatabaseConfig().MigrationsPath)
	assert.False(t, m.GetDatabaseConfig().AutoMigrate)
	assert.True(t, m.IsDevelopment())
	assert.False(t, m.IsProduction())
	assert.NoError(t, m.Validate())
}

func TestNewManager_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9000
records:
  driver: postgres
database:
  host: db.internal
logging:
  level: debug
`)
	t.Setenv("DCTMD_SERVER_PORT", "9100")
	t.Setenv("DCTMD_RATE_LIMIT_BURST", "7")

	m, err := NewManager(WithConfigFile(path))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9100, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, "postgres", cfg.Records.Driver)
	assert.Equal(t, "db.internal", m.GetDatabaseConfig().Host)
	assert.True(t, m.IsProduction())
	assert.Equal(t, "host=db.internal port=5432 user=postgres password= dbname=dctmd sslmode=disable", m.GetDatabaseConnectionString())
	assert.NoError(t, m.Validate())
}

func TestNewManager_MalformedFile(t *testing.T) {
	_, err := NewManager(WithConfigFile(writeConfig(t, "server: [")))
	assert.Error(t, err)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *domain.Config)
		errMsg string
	}{
		{"bad port", func(c *domain.Config) { c.Server.Port = 0 }, "invalid server port"},
		{"tls without cert", func(c *domain.Config) { c.Server.TLSEnabled = true }, "cert_file"},
		{"unknown driver", func(c *domain.Config) { c.Records.Driver = "mongo" }, "invalid records driver"},
		{"sqlite without path", func(c *domain.Config) { c.Records.SQLitePath = "" }, "sqlite_path"},
		{"postgres without host", func(c *domain.Config) {
			c.Records.Driver = "postgres"
			c.Database.Host = ""
		}, "database host"},
		{"rate limit without burst", func(c *domain.Config) { c.RateLimit.Burst = 0 }, "rate limit"},
		{"bad log level", func(c *domain.Config) { c.Logging.Level = "loud" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(WithConfigFile(writeConfig(t, "{}\n")))
			require.NoError(t, err)

			tt.mutate(m.GetConfig())
			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(domain.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger, err = NewLogger(domain.LoggingConfig{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logFile := filepath.Join(t.TempDir(), "dctmd.log")
	logger, err = NewLogger(domain.LoggingConfig{Output: logFile})
	require.NoError(t, err)
	logger.Info("hello")
	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")

	_, err = NewLogger(domain.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
