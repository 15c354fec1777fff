package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfigWithViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "./analytics.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.ResponseDelay)
	assert.Empty(t, cfg.SeedFile)
	assert.Equal(t, 10*time.Second, cfg.CacheTTL)
	assert.Equal(t, "localhost:8080", cfg.Address())
}

func TestLoadServerConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AA_SERVER_PORT", "9090")
	t.Setenv("AA_SERVER_HOST", "0.0.0.0")
	t.Setenv("AA_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("AA_LOGGING_LEVEL", "debug")
	t.Setenv("AA_MOCK_RESPONSE_DELAY", "0s")
	t.Setenv("AA_MOCK_SEED_FILE", "/tmp/seed.yaml")
	t.Setenv("AA_SERVER_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("AA_MOCK_CACHE_TTL", "0s")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Zero(t, cfg.ResponseDelay)
	assert.Equal(t, "/tmp/seed.yaml", cfg.SeedFile)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Zero(t, cfg.CacheTTL)
}

func TestLoadServerConfig_File(t *testing.T) {
	path := writeConfigFile(t, "server.yaml", `
server:
  port: "7070"
  host: "127.0.0.1"
database:
  path: "./file.db"
logging:
  level: "warn"
mock:
  response_delay: "1s"
`)

	cfg, err := LoadServerConfigWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7070", cfg.Address())
	assert.Equal(t, "./file.db", cfg.DBPath)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, time.Second, cfg.ResponseDelay)
}

func TestLoadServerConfig_EnvBeatsFile(t *testing.T) {
	path := writeConfigFile(t, "server.yaml", "server:\n  port: \"7070\"\n")
	t.Setenv("AA_SERVER_PORT", "6060")

	cfg, err := LoadServerConfigWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.ServerPort)
}

func TestLoadServerConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadServerConfigWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadServerConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		error string
	}{
		{
			name:  "Non-numeric port",
			env:   map[string]string{"AA_SERVER_PORT": "http"},
			error: "invalid server port",
		},
		{
			name:  "Port out of range",
			env:   map[string]string{"AA_SERVER_PORT": "70000"},
			error: "invalid server port",
		},
		{
			name:  "Unknown log level",
			env:   map[string]string{"AA_LOGGING_LEVEL": "verbose"},
			error: "invalid log level",
		},
		{
			name:  "Negative delay",
			env:   map[string]string{"AA_MOCK_RESPONSE_DELAY": "-1s"},
			error: "response delay must be non-negative",
		},
		{
			name:  "Unparseable delay",
			env:   map[string]string{"AA_MOCK_RESPONSE_DELAY": "soon"},
			error: "invalid response delay",
		},
		{
			name:  "Negative cache TTL",
			env:   map[string]string{"AA_MOCK_CACHE_TTL": "-5s"},
			error: "cache TTL must be non-negative",
		},
		{
			name:  "Zero shutdown timeout",
			env:   map[string]string{"AA_SERVER_SHUTDOWN_TIMEOUT": "0s"},
			error: "shutdown timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadServerConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.error)
		})
	}
}

func TestConfig_SlogLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "bogus"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
