package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty working directory with an empty HOME.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "umee-wallet", cfg.Project)
	assert.Equal(t, "../blockchains", cfg.ChainsDir)
	assert.Equal(t, "../projects", cfg.ProjectsDir)
	assert.Equal(t, "file:.regsync/registry.db", cfg.Store.URL)
	assert.Empty(t, cfg.Store.AuthToken)
	assert.Equal(t, uint(3), cfg.Store.ConnectAttempts)
	assert.Equal(t, time.Second, cfg.Store.ConnectDelay)
	assert.Equal(t, 8, cfg.Loader.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Empty(t, cfg.File)
}

func TestLoad_FileOnSearchPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "regsync.yaml"), []byte(`
chains_dir: ./blockchains
store:
  url: libsql://registry-umee.turso.io
loader:
  concurrency: 2
`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./blockchains", cfg.ChainsDir)
	assert.Equal(t, "libsql://registry-umee.turso.io", cfg.Store.URL)
	assert.Equal(t, 2, cfg.Loader.Concurrency)
	// Untouched keys keep their defaults.
	assert.Equal(t, "../projects", cfg.ProjectsDir)
	assert.Equal(t, uint(3), cfg.Store.ConnectAttempts)
	assert.Equal(t, "regsync.yaml", filepath.Base(cfg.File))
}

func TestLoad_ExtensionlessFileIsIgnored(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "regsync"), []byte{0x7f, 'E', 'L', 'F'}, 0o755))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("REGSYNC_STORE_AUTH_TOKEN", "secret")
	t.Setenv("REGSYNC_STORE_CONNECT_DELAY", "250ms")
	t.Setenv("REGSYNC_PROJECTS_DIR", "/srv/projects")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Store.AuthToken)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.ConnectDelay)
	assert.Equal(t, "/srv/projects", cfg.ProjectsDir)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("REGSYNC_LOADER_CONCURRENCY", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader.concurrency")
}
