// Package config loads the optional config.yaml and applies
// CODEX_ACCOUNTS_* environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfig        = "CODEX_ACCOUNTS_CONFIG"
	EnvDataDir       = "CODEX_ACCOUNTS_DATA_DIR"
	EnvStorage       = "CODEX_ACCOUNTS_STORAGE"
	EnvAPIAddr       = "CODEX_ACCOUNTS_API_ADDR"
	EnvAuthFile      = "CODEX_ACCOUNTS_AUTH_FILE"
	EnvAdminPassword = "CODEX_ACCOUNTS_ADMIN_PASSWORD"
)

// Storage backends.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// DefaultAPIAddr is where `serve` listens unless configured otherwise.
const DefaultAPIAddr = "127.0.0.1:8765"

// Config represents the complete application configuration.
type Config struct {
	DataDir string    `yaml:"data_dir"`
	Storage string    `yaml:"storage"`
	API     APIConfig `yaml:"api"`
	// AuthFile is where the active account's credentials are exported.
	// Empty means ~/.codex/auth.json.
	AuthFile string `yaml:"auth_file"`
	Verbose  bool   `yaml:"verbose"`
}

// APIConfig contains control API configuration.
type APIConfig struct {
	Addr          string `yaml:"addr"`
	AdminPassword string `yaml:"admin_password"`
}

// DefaultDataDir returns <local data dir>/CodexAccountManager: %LOCALAPPDATA%
// on Windows, ~/Library/Application Support on macOS and $XDG_DATA_HOME
// (~/.local/share) elsewhere.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "CodexAccountManager")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Storage: StorageJSON,
		API:     APIConfig{Addr: DefaultAPIAddr},
	}
}

// LoadDotEnv loads a .env file from the working directory if there is one.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the config file at path and applies environment overrides.
// An empty path resolves to $CODEX_ACCOUNTS_CONFIG or <data dir>/config.yaml;
// a missing default file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	return LoadFrom(path, "")
}

// LoadFrom is Load with a data dir that takes precedence over the file and
// the environment, and is also where the default config.yaml is looked up.
func LoadFrom(path, dataDir string) (*Config, error) {
	cfg := Default()
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfig); env != "" {
			path, explicit = env, true
		} else {
			path = filepath.Join(cfg.DataDir, "config.yaml")
		}
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config file not found: %s", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.ApplyEnv()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CODEX_ACCOUNTS_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage = v
	}
	if v := os.Getenv(EnvAPIAddr); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv(EnvAuthFile); v != "" {
		c.AuthFile = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.API.AdminPassword = v
	}
}

// Validate checks the configuration and fills empty fields with defaults.
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case "":
		c.Storage = StorageJSON
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageJSON, StorageSQLite, c.Storage)
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	return nil
}

// StatePath returns the file backing the selected storage.
func (c *Config) StatePath() string {
	if c.Storage == StorageSQLite {
		return filepath.Join(c.DataDir, "state.db")
	}
	return filepath.Join(c.DataDir, "state.json")
}
