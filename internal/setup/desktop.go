// Package setup registers the lite MCP server with desktop MCP clients that
// read a claude_desktop_config.json style file.
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

const (
	// ServerKey is the mcpServers entry name
	ServerKey = "dctmd"
	// LiteBinary is the executable looked up on PATH when no binary is given
	LiteBinary = "mcp-server-lite"
	// DataDirEnv points the lite server at its data directory
	DataDirEnv = "DCTMD_DATA_DIR"
)

// ServerEntry is one mcpServers entry
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ClientConfig is a desktop client config file. Keys other than mcpServers are
// kept as-is so that saving never drops client settings.
type ClientConfig struct {
	MCPServers map[string]ServerEntry
	other      map[string]json.RawMessage
}

// Environment abstracts the lookups ClientConfigPath needs
type Environment struct {
	GOOS   string
	Home   string
	Getenv func(string) string
}

// ClientConfigPath returns where the desktop client keeps its config on env.GOOS
func ClientConfigPath(env Environment) (string, error) {
	var dir string
	switch env.GOOS {
	case "darwin":
		dir = filepath.Join(env.Home, "Library", "Application Support", "Claude")
	case "linux":
		if xdg := env.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "Claude")
		} else {
			dir = filepath.Join(env.Home, ".config", "Claude")
		}
	case "windows":
		appData := env.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		dir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system %q", env.GOOS)
	}
	return filepath.Join(dir, "claude_desktop_config.json"), nil
}

// LoadClientConfig reads path. A missing file yields an empty config.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		MCPServers: make(map[string]ServerEntry),
		other:      make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &cfg.other); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if servers, ok := cfg.other["mcpServers"]; ok {
		if err := json.Unmarshal(servers, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("parsing mcpServers in %s: %w", path, err)
		}
		delete(cfg.other, "mcpServers")
		if cfg.MCPServers == nil {
			cfg.MCPServers = make(map[string]ServerEntry)
		}
	}
	return cfg, nil
}

// MarshalJSON writes mcpServers back next to the preserved keys
func (c *ClientConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.other)+1)
	for k, v := range c.other {
		out[k] = v
	}
	out["mcpServers"] = c.MCPServers
	return json.Marshal(out)
}

// Save writes the config with two-space indentation, creating the directory
func (c *ClientConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// NewServerEntry builds the entry for the lite server. dataDir may be empty.
func NewServerEntry(binary, dataDir string) ServerEntry {
	entry := ServerEntry{Command: binary}
	if dataDir != "" {
		entry.Env = map[string]string{DataDirEnv: dataDir}
	}
	return entry
}

// FindBinary resolves name on PATH and returns an absolute path
func FindBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH, pass --binary: %w", name, err)
	}
	return filepath.Abs(path)
}

// Status describes what a client config says about this server
type Status struct {
	ConfigPath string   `json:"config_path"`
	Registered bool     `json:"registered"`
	Command    string   `json:"command,omitempty"`
	DataDir    string   `json:"data_dir,omitempty"`
	Others     []string `json:"other_servers,omitempty"`
	Issues     []string `json:"issues,omitempty"`
}

// Check inspects the client config at path
func Check(path string) (*Status, error) {
	cfg, err := LoadClientConfig(path)
	if err != nil {
		return nil, err
	}

	st := &Status{ConfigPath: path}
	for name := range cfg.MCPServers {
		if name != ServerKey {
			st.Others = append(st.Others, name)
		}
	}
	sort.Strings(st.Others)

	entry, ok := cfg.MCPServers[ServerKey]
	if !ok {
		st.Issues = append(st.Issues, "server is not registered")
		return st, nil
	}

	st.Registered = true
	st.Command = entry.Command
	st.DataDir = entry.Env[DataDirEnv]

	info, err := os.Stat(entry.Command)
	switch {
	case err != nil:
		st.Issues = append(st.Issues, "binary not found: "+entry.Command)
	case info.Mode()&0o111 == 0:
		st.Issues = append(st.Issues, "binary is not executable: "+entry.Command)
	}
	return st, nil
}
