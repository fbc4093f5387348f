package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  host: db.internal
  name: appointments
jwt:
  secret: from-file
outbox:
  batch_size: 10
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 10, cfg.Outbox.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Outbox.ClaimLease)
	assert.Equal(t, "appointments.events", cfg.Redis.Channel)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry())
}

func TestLoadConfig_SecretOverrides(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
database:
  password: from-file
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APPT_JWT_SECRET", "from-env")
	t.Setenv("APPT_DB_PASSWORD", "s3cret")
	t.Setenv("APPT_REDIS_URL", "redis://cache:6379/1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "server:\n  port: 8080\n"))

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "jwt secret is required")
}

func TestDatabaseConfig_URL(t *testing.T) {
	c := DatabaseConfig{Host: "localhost", Port: 5432, User: "app", Password: "pw", Name: "appt", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:pw@localhost:5432/appt?sslmode=disable", c.URL())
	assert.Equal(t, "host=localhost port=5432 user=app password=pw dbname=appt sslmode=disable", c.DSN())
}
