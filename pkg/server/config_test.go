package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, 30, cfg.BidWindowSeconds)
	assert.Equal(t, 5, cfg.MaxPlayers)

	// A missing file is not an error.
	cfg, err = LoadAppConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kuhhandel.db", cfg.DBPath)
}

func TestLoadAppConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 0.0.0.0
port: 9000
dbPath: ":memory:"
debugLevel: debug
bidWindowSeconds: 10
`), 0644))

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr())
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "debug", cfg.DebugLevel)
	assert.Equal(t, 10, cfg.BidWindowSeconds)
	// Untouched fields keep their defaults.
	assert.Equal(t, 15, cfg.MatchWindowSeconds)
}

func TestLoadAppConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0644))
	_, err := LoadAppConfig(path)
	assert.Error(t, err)
}
