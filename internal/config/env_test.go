package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ARENA_CONFIG=from-file.toml\nARENA_BIND_ADDRESS=127.0.0.1:9999\n"), 0o644))
	t.Setenv(EnvConfigPath, "from-process.toml")
	t.Setenv(EnvBindAddress, "")
	os.Unsetenv(EnvBindAddress)

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-process.toml", ConfigPath("config/server.toml"))
	assert.Equal(t, "127.0.0.1:9999", os.Getenv(EnvBindAddress))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "postgres://arena@db/arena")
	t.Setenv(EnvBindAddress, "")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "postgres://arena@db/arena", cfg.Database.DSN)
	assert.Equal(t, "0.0.0.0:8080", cfg.Network.BindAddress)
}

func TestConfigPathFallback(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, "config/server.toml", ConfigPath("config/server.toml"))
}
