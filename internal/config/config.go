package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hongminglow/userdesk/internal/policy"
)

// DevSecret is accepted only when APP_ENV=development.
const DevSecret = "dev-secret-change-me"

const minSecretLength = 16

// Config holds runtime configuration sourced from an optional YAML file and env vars.
type Config struct {
	Port    string `yaml:"port" env:"PORT"`
	AppEnv  string `yaml:"app_env" env:"APP_ENV"`
	APIName string `yaml:"api_title" env:"API_TITLE"`
	APIVer  string `yaml:"api_version" env:"API_VERSION"`

	DatabaseDriver string `yaml:"database_driver" env:"DATABASE_DRIVER"`
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE"`

	SecretKey           string        `yaml:"secret_key" env:"SECRET_KEY"`
	SessionIssuer       string        `yaml:"session_issuer" env:"SESSION_ISSUER"`
	SessionCookieName   string        `yaml:"session_cookie_name" env:"SESSION_COOKIE_NAME"`
	SessionCookieSecure bool          `yaml:"session_cookie_secure" env:"SESSION_COOKIE_SECURE"`
	SessionTTL          time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	BcryptCost          int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"`

	BootstrapAdminPolicy string `yaml:"bootstrap_admin_policy" env:"BOOTSTRAP_ADMIN_POLICY"`
	ListUsersPolicy      string `yaml:"list_users_policy" env:"LIST_USERS_POLICY"`

	CORSOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	OTLPEndpoint string `yaml:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Defaults returns the baseline configuration: a local sqlite file and open policies.
func Defaults() Config {
	return Config{
		Port:                 "8080",
		AppEnv:               "production",
		APIName:              "My API",
		APIVer:               "1.0",
		DatabaseDriver:       "sqlite",
		DatabaseURL:          "userdesk.db",
		AutoMigrate:          true,
		SessionIssuer:        "userdesk",
		SessionCookieName:    "session",
		BcryptCost:           10,
		BootstrapAdminPolicy: string(policy.BootstrapOpen),
		ListUsersPolicy:      string(policy.ListPublic),
		CORSOrigins:          []string{"*"},
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load layers defaults, the YAML file named by CONFIG_FILE (if any) and the
// environment, then validates the result.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}

	if cfg.SecretKey == "" && cfg.IsDevelopment() {
		slog.Warn("SECRET_KEY not set; using development fallback secret")
		cfg.SecretKey = DevSecret
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse layers the sources without validation. The admin CLI uses it because
// it needs only the storage settings.
func Parse() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// ValidateStorage checks only the database settings.
func (c Config) ValidateStorage() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("DATABASE_DRIVER must be 'sqlite' or 'postgres' (got %q)", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.CORSOrigins = parseOrigins(c.CORSOrigins)
}

// Validate performs minimal validation of a populated Config.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if !c.IsDevelopment() && (c.SecretKey == DevSecret || len(c.SecretKey) < minSecretLength) {
		return fmt.Errorf("SECRET_KEY must be at least %d characters and not the development default", minSecretLength)
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME is required")
	}
	if c.SessionTTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}
	if _, err := policy.ParseBootstrap(c.BootstrapAdminPolicy); err != nil {
		return fmt.Errorf("BOOTSTRAP_ADMIN_POLICY: %w", err)
	}
	if _, err := policy.ParseListUsers(c.ListUsersPolicy); err != nil {
		return fmt.Errorf("LIST_USERS_POLICY: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return errors.New("LOG_FORMAT must be 'json' or 'text'")
	}
	return nil
}

// Policies returns the parsed access policies. Call after Validate.
func (c Config) Policies() policy.Policies {
	b, _ := policy.ParseBootstrap(c.BootstrapAdminPolicy)
	l, _ := policy.ParseListUsers(c.ListUsersPolicy)
	return policy.Policies{Bootstrap: b, ListUsers: l}
}

// IsDevelopment reports whether APP_ENV selects the development profile.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "development")
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func parseOrigins(in []string) []string {
	var out []string
	for _, part := range in {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
