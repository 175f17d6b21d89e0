package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dctmd-mcp-server/internal/domain"
)

const (
	// DefaultServerName is the MCP implementation name
	DefaultServerName = "dctmd-mcp-server"
	// DefaultServerVersion is the MCP implementation version
	DefaultServerVersion = "1.0.0"

	liteRecordsFile = "records.db"
)

// LiteConfig configures the standalone MCP server from DCTMD_* environment
// variables only. Records live in SQLite under DataDir; driver "none" disables them.
type LiteConfig struct {
	DataDir       string
	RecordsDriver string
	LogLevel      string
	LogFormat     string
}

func liteDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("data_dir", filepath.Join(home, ".dctmd"))
	v.SetDefault("records_driver", "sqlite")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// DefaultLiteConfig returns the settings used when no variable is set
func DefaultLiteConfig() *LiteConfig {
	v := viper.New()
	liteDefaults(v)
	return decodeLite(v)
}

// LoadLiteConfig overlays DCTMD_DATA_DIR, DCTMD_RECORDS_DRIVER, DCTMD_LOG_LEVEL
// and DCTMD_LOG_FORMAT on the defaults
func LoadLiteConfig() *LiteConfig {
	v := viper.New()
	liteDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return decodeLite(v)
}

func decodeLite(v *viper.Viper) *LiteConfig {
	return &LiteConfig{
		DataDir:       v.GetString("data_dir"),
		RecordsDriver: strings.ToLower(v.GetString("records_driver")),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
	}
}

// RecordsDBPath is the SQLite file inside DataDir
func (c *LiteConfig) RecordsDBPath() string {
	return filepath.Join(c.DataDir, liteRecordsFile)
}

func (c *LiteConfig) RecordsEnabled() bool {
	return c.RecordsDriver != "none"
}

func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

// Logging returns the logging section for NewLogger. stdout belongs to the MCP
// stdio transport, so output is always stderr.
func (c *LiteConfig) Logging() domain.LoggingConfig {
	return domain.LoggingConfig{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Output: "stderr",
	}
}
