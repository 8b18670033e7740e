package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err, "a missing config file falls back to defaults")

	require.Equal(t, ":8080", cfg.GetString("server.addr"))
	require.Equal(t, 10*time.Second, cfg.GetDuration("server.shutdown_timeout"))
	require.Equal(t, "brewdeck.db", cfg.GetString("store.path"))
	require.Equal(t, "http://localhost:8080", cfg.GetString("console.base_url"))
	require.Equal(t, 10, cfg.GetInt("console.page_size"))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brewdeck.yaml")
	data := []byte("server:\n  addr: \":9090\"\nconsole:\n  page_size: 25\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.GetString("server.addr"))
	require.Equal(t, 25, cfg.GetInt("console.page_size"))
	// Keys not in the file keep their defaults.
	require.Equal(t, "brewdeck.db", cfg.GetString("store.path"))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BREWDECK_SERVER_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.GetString("server.addr"))
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err, "an explicitly named config file must exist")
}
