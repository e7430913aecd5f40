package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvConfigFile, EnvServerAddr, EnvAPIPrefix, EnvShutdownTimeout, EnvMaxBodySize,
		EnvCORSOrigins, EnvKVBackend, EnvBadgerDir, EnvDatabaseURL, EnvDatabaseDriver, EnvKVTable,
		EnvSupabaseURL, EnvServiceRoleKey, EnvJWTSecret, EnvServerTimestamps, EnvLogLevel,
	} {
		t.Setenv(k, "")
	}
}

func TestFinalizeDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJWTSecret, "secret")

	cfg := &Config{}
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/make-server", cfg.Server.APIPrefix)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeoutDuration())
	assert.Equal(t, int64(1000000), cfg.Server.MaxBodySizeBytes())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "kv_store", cfg.Store.Table)
	assert.Equal(t, DriverPQ, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Documents.ServerTimestamps)
}

func TestFinalizeEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvAPIPrefix, "/api/")
	t.Setenv(EnvMaxBodySize, "2MB")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example")
	t.Setenv(EnvKVBackend, BackendBadger)
	t.Setenv(EnvServerTimestamps, "true")

	cfg := &Config{}
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, int64(2000000), cfg.Server.MaxBodySizeBytes())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.True(t, cfg.Documents.ServerTimestamps)
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no auth configured", map[string]string{}},
		{"url without service key", map[string]string{EnvSupabaseURL: "https://x.supabase.co"}},
		{"bad backend", map[string]string{EnvJWTSecret: "s", EnvKVBackend: "redis"}},
		{"postgres without dsn", map[string]string{EnvJWTSecret: "s", EnvKVBackend: BackendPostgres}},
		{"postgres bad table", map[string]string{EnvJWTSecret: "s", EnvKVBackend: BackendPostgres, EnvDatabaseURL: "postgres://x", EnvKVTable: "kv; drop"}},
		{"postgres unknown driver", map[string]string{EnvJWTSecret: "s", EnvKVBackend: BackendPostgres, EnvDatabaseURL: "postgres://x", EnvDatabaseDriver: "mysql"}},
		{"bad timeout", map[string]string{EnvJWTSecret: "s", EnvShutdownTimeout: "soon"}},
		{"bad size", map[string]string{EnvJWTSecret: "s", EnvMaxBodySize: "lots"}},
		{"bad prefix", map[string]string{EnvJWTSecret: "s", EnvAPIPrefix: "api"}},
		{"bad bool", map[string]string{EnvJWTSecret: "s", EnvServerTimestamps: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := &Config{}
			assert.Error(t, cfg.Finalize())
		})
	}
}

func TestFinalizeRemoteAuthOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSupabaseURL, "https://x.supabase.co")
	t.Setenv(EnvServiceRoleKey, "service")

	cfg := &Config{}
	assert.NoError(t, cfg.Finalize())
}

func TestLoadTOMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[server]
addr = ":9090"
api_prefix = "/v1"

[store]
backend = "postgres"
database_url = "postgres://u:p@localhost:5432/app"
driver = "pgx"
table = "kv_store_app"

[auth]
jwt_secret = "from-file"

[documents]
server_timestamps = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvServerAddr, ":7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "environment wins over the file")
	assert.Equal(t, "/v1", cfg.Server.APIPrefix)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, DriverPGX, cfg.Store.Driver)
	assert.Equal(t, "kv_store_app", cfg.Store.Table)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Documents.ServerTimestamps)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.toml"))
	_, err := Load()
	assert.Error(t, err)
}
