package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  api_keys: ["k1"]
database:
  name: pawresort
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 200, cfg.MaxBatchResources())
	assert.Equal(t, time.Duration(0), cfg.ResourceCacheTTL())
	assert.Equal(t, 24*time.Hour, cfg.ReminderWindow())
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	path := writeConfig(t, `
server:
  api_keys: ["k1"]
database:
  name: pawresort
  password: ${TEST_DB_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  api_keys: ["k1", "k2"]
database:
  host: db.internal
  port: 5433
  name: pawresort
  ssl_mode: require
redis:
  address: localhost:6379
  resource_ttl_seconds: 120
booking:
  session_timeout_minutes: 45
  max_batch_resources: 50
reminders:
  enabled: true
  daily_hour: 9
  hours_before_check_in: 48
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 45*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 50, cfg.MaxBatchResources())
	assert.Equal(t, 2*time.Minute, cfg.ResourceCacheTTL())
	assert.Equal(t, 48*time.Hour, cfg.ReminderWindow())
	assert.True(t, cfg.Reminders.Enabled)
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing database name", "server:\n  api_keys: [\"k1\"]\n"},
		{"missing api keys", "database:\n  name: pawresort\n"},
		{"invalid yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
