package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "traindiary"
redis_host = "localhost"
redis_port = "6379"
static_auth_enabled = true
static_auth_email = "dev@traindiary.local"
static_auth_username = "dev"
session_ttl_hours = 168
login_rate_limit_allowed_per_min = 15
day_cache_ttl_seconds = 60

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/traindiary/service.log"
sentry_enabled = true
postgres_host = "traindiary-db"
postgres_port = "5432"
postgres_db_name = "traindiary"
redis_host = "traindiary-redis"
redis_port = "6379"
prometheus_metrics_host = ""
prometheus_metrics_port = "2112"
session_ttl_hours = 168
login_rate_limit_allowed_per_min = 10
day_cache_ttl_seconds = 300
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.True(t, cfg.StaticAuthEnabled)
	assert.Equal(t, "dev@traindiary.local", cfg.StaticAuthEmail)
	assert.Equal(t, 168, cfg.SessionTTLHours)
	assert.Equal(t, 60, cfg.DayCacheTTLSeconds)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("prod", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.SentryEnabled)
	assert.False(t, cfg.StaticAuthEnabled)
	assert.Equal(t, "traindiary-db", cfg.PostgresHost)
	assert.Equal(t, "2112", cfg.PrometheusMetricsPort)
}

func TestLoad_UnknownEnv(t *testing.T) {
	cfg, err := Load("staging", writeTestConfig(t))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unknown env")
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("development", "/nonexistent/config.toml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}
