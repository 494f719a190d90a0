package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/userdesk/internal/policy"
)

const testSecret = "0123456789abcdef0123"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "APP_ENV", "DATABASE_DRIVER", "DATABASE_URL", "AUTO_MIGRATE", "SECRET_KEY",
		"SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE", "SESSION_TTL", "BCRYPT_COST", "BOOTSTRAP_ADMIN_POLICY",
		"LIST_USERS_POLICY", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "session", cfg.SessionCookieName)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, policy.Default(), cfg.Policies())
}

func TestLoad_RequiresSecretOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "SECRET_KEY")

	t.Setenv("SECRET_KEY", "short")
	_, err = Load()
	assert.ErrorContains(t, err, "SECRET_KEY")
}

func TestLoad_DevelopmentFallbackSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DevSecret, cfg.SecretKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("BOOTSTRAP_ADMIN_POLICY", "first-run")
	t.Setenv("LIST_USERS_POLICY", "admin")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, policy.Policies{Bootstrap: policy.BootstrapFirstRun, ListUsers: policy.ListAdmin}, cfg.Policies())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7070"
database_url: /var/lib/userdesk/app.db
secret_key: from-file-secret-value
session_ttl: 30m
list_users_policy: authenticated
log_format: json
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7171")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7171", cfg.Port)
	assert.Equal(t, "/var/lib/userdesk/app.db", cfg.DatabaseURL)
	assert.Equal(t, "from-file-secret-value", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, policy.ListAuthenticated, cfg.Policies().ListUsers)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.ErrorContains(t, err, "read config file")
}

func TestValidate_Rejects(t *testing.T) {
	base := Defaults()
	base.SecretKey = testSecret
	require.NoError(t, base.Validate())

	cases := map[string]func(*Config){
		"driver":    func(c *Config) { c.DatabaseDriver = "mysql" },
		"dsn":       func(c *Config) { c.DatabaseURL = "" },
		"bootstrap": func(c *Config) { c.BootstrapAdminPolicy = "sometimes" },
		"list":      func(c *Config) { c.ListUsersPolicy = "everyone" },
		"level":     func(c *Config) { c.LogLevel = "trace" },
		"format":    func(c *Config) { c.LogFormat = "xml" },
		"ttl":       func(c *Config) { c.SessionTTL = -time.Second },
		"devsecret": func(c *Config) { c.SecretKey = DevSecret },
		"cookie":    func(c *Config) { c.SessionCookieName = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParse_SkipsSecretValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/userdesk")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Empty(t, cfg.SecretKey)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.NoError(t, cfg.ValidateStorage())

	cfg.DatabaseDriver = "mysql"
	assert.ErrorContains(t, cfg.ValidateStorage(), "DATABASE_DRIVER")
}
