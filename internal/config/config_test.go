package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  host: 127.0.0.1
  port: 9090
database:
  host: localhost
  port: 5432
  user: motorent
  password: secret
  database: motorent_test
  ssl_mode: disable
jwt:
  secret: test-secret
log:
  level: warn
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddress())
	assert.Equal(t, "sandbox", cfg.Gateway.Mode)
	assert.Equal(t, 30, cfg.Booking.PendingTTLMinutes)
	assert.Equal(t, int64(2000), cfg.Booking.DefaultOvertimeHourlyYen)
	assert.Equal(t, "0 */10 * * * *", cfg.Scheduler.ExpirePendingReservations)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("GATEWAY_MODE", "sandbox")

	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "db.internal")
}

func TestLoadRejectsIncompleteLiveGateway(t *testing.T) {
	_, err := Load(writeConfig(t, testYAML+`
gateway:
  mode: live
`))
	assert.Error(t, err)
}

func TestLoadRejectsMissingJWTSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  port: 8080
database:
  host: localhost
  database: motorent
`))
	assert.Error(t, err)
}
