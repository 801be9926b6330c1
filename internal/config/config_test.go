package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adrg/xdg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvDataDir, EnvStorage, EnvAPIAddr, EnvAuthFile, EnvAdminPassword} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.Equal(t, DefaultAPIAddr, cfg.API.Addr)
	assert.Equal(t, filepath.Join(dir, "state.json"), cfg.StatePath())
}

func TestLoad_FileInDataDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	content := `
storage: sqlite
api:
  addr: "127.0.0.1:9999"
auth_file: /tmp/auth.json
verbose: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "127.0.0.1:9999", cfg.API.Addr)
	assert.Equal(t, "/tmp/auth.json", cfg.AuthFile)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, filepath.Join(dir, "state.db"), cfg.StatePath())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: sqlite\napi:\n  addr: \"127.0.0.1:1\"\n"), 0o644))

	t.Setenv(EnvStorage, "json")
	t.Setenv(EnvAPIAddr, "127.0.0.1:2")
	t.Setenv(EnvAdminPassword, "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.Equal(t, "127.0.0.1:2", cfg.API.Addr)
	assert.Equal(t, "s3cret", cfg.API.AdminPassword)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate_RejectsUnknownStorage(t *testing.T) {
	cfg := Default()
	cfg.Storage = "postgres"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestLoad_ConfigEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: SQLite\n"), 0o644))
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
}

func TestLoadFrom_DataDirLocatesConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataDir, t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage: sqlite\ndata_dir: /elsewhere\n"), 0o600))

	cfg, err := LoadFrom("", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, filepath.Join(dir, "state.db"), cfg.StatePath())
}

func TestDefaultDataDir_XDGDataHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_HOME only applies on Linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	assert.Equal(t, filepath.Join(dir, "CodexAccountManager"), DefaultDataDir())
}
