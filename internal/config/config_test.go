package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
service:
  name: billing
  environment: test
  site_url: http://localhost:3000
  stripe_secret_key: sk_test_123
  stripe_webhook_secret: whsec_test_123
  jwt_secret: jwt-test-secret

database:
  host: localhost
  port: 5432
  name: billing_test
  user: billing
  password: secret
  ssl_mode: disable
  max_open_conns: 10
  max_idle_conns: 2
  conn_max_lifetime: 5m
  conn_max_idle_time: 5m

server:
  http:
    host: 0.0.0.0
    port: 8084

log:
  level: debug
  format: console
  output: stdout
  development: true
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfigFile(t, validConfigYAML))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Service.Name)
	assert.Equal(t, "sk_test_123", cfg.Service.StripeSecretKey)
	assert.Equal(t, "whsec_test_123", cfg.Service.StripeWebhookSecret)
	assert.Equal(t, 8084, cfg.Server.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfigFile(t, validConfigYAML))
	t.Setenv("STRIPE_SECRET_KEY", "sk_live_overridden")
	t.Setenv("JWT_SECRET", "env-jwt-secret")
	t.Setenv("DATABASE_PASSWORD", "env-password")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk_live_overridden", cfg.Service.StripeSecretKey)
	assert.Equal(t, "env-jwt-secret", cfg.Service.JWTSecret)
	assert.Equal(t, "env-password", cfg.Database.Password)
	// Values without overrides stay as configured
	assert.Equal(t, "whsec_test_123", cfg.Service.StripeWebhookSecret)
}

func TestLoadConfig_MissingRequiredField(t *testing.T) {
	const missingSecret = `
service:
  site_url: http://localhost:3000
  stripe_secret_key: sk_test_123
  stripe_webhook_secret: whsec_test_123

database:
  host: localhost
  port: 5432
  name: billing_test
  user: billing

server:
  http:
    port: 8084
`
	t.Setenv("CONFIG_PATH", writeConfigFile(t, missingSecret))

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "billing",
		User:     "svc",
		Password: "pw",
	}

	// ssl_mode defaults to disable when unset
	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=pw dbname=billing sslmode=disable",
		cfg.DSN())

	cfg.SSLMode = "require"
	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=pw dbname=billing sslmode=require",
		cfg.DSN())
}
