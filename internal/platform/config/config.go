package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is the deployment-provided runtime configuration.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	// Exactly one of AdminPassword / AdminPasswordHash is expected; the hash wins when both are set.
	AdminPassword     string
	AdminPasswordHash string

	// SessionSecret signs admin session tokens. When empty a random secret is generated at
	// startup and sessions do not survive a restart.
	SessionSecret string
	SessionTTL    time.Duration

	CaptchaSiteKey   string
	CaptchaSecretKey string
	CaptchaVerifyURL string

	// RSVPDeadline is nil when RSVPs never close.
	RSVPDeadline *time.Time

	StaticDir string

	ShutdownTimeout time.Duration
}

// CaptchaEnabled reports whether public submissions require a challenge token.
func (c Config) CaptchaEnabled() bool { return c.CaptchaSiteKey != "" }

// Load reads an optional .env file (existing environment variables win) and then
// builds the configuration from the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates the configuration using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:              get("PORT", "8080"),
		LogLevel:          strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(get("LOG_FORMAT", "json")),
		StorageBackend:    strings.ToLower(get("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:       get("DATABASE_URL", ""),
		SQLitePath:        get("SQLITE_PATH", "wedding.db"),
		AdminPassword:     getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:     getenv("SESSION_SECRET"),
		SessionTTL:        12 * time.Hour,
		CaptchaSiteKey:    get("CAPTCHA_SITE_KEY", ""),
		CaptchaSecretKey:  get("CAPTCHA_SECRET_KEY", ""),
		CaptchaVerifyURL:  get("CAPTCHA_VERIFY_URL", ""),
		StaticDir:         get("STATIC_DIR", ""),
		ShutdownTimeout:   10 * time.Second,
	}

	var problems []string

	if v := get("SESSION_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			problems = append(problems, "SESSION_TTL must be a positive duration (e.g. 12h)")
		} else {
			cfg.SessionTTL = d
		}
	}
	if v := get("SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			problems = append(problems, "SHUTDOWN_TIMEOUT must be a positive duration (e.g. 10s)")
		} else {
			cfg.ShutdownTimeout = d
		}
	}
	if v := get("RSVP_DEADLINE", ""); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			problems = append(problems, "RSVP_DEADLINE must be an RFC 3339 timestamp (e.g. 2026-08-01T00:00:00Z)")
		} else {
			t = t.UTC()
			cfg.RSVPDeadline = &t
		}
	}

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		problems = append(problems, "STORAGE_BACKEND must be one of memory, postgres, sqlite")
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		problems = append(problems, "LOG_FORMAT must be json or console")
	}

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		problems = append(problems, "one of ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < 32 {
		problems = append(problems, "SESSION_SECRET must be at least 32 bytes")
	}
	if cfg.CaptchaSiteKey != "" && cfg.CaptchaSecretKey == "" {
		problems = append(problems, "CAPTCHA_SECRET_KEY is required when CAPTCHA_SITE_KEY is set")
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}
