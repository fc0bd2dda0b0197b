package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCookieName is the cookie carrying the login token ID.
const DefaultCookieName = "CoreCMSAuthToken"

// Config defines runtime configuration for the session subsystem.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	// CookieName is the name of the credential cookie.
	CookieName string
	// CookiePath and CookieDomain scope the credential cookie.
	CookiePath   string
	CookieDomain string

	// SessionLifetime is how long an issued token stays valid.
	SessionLifetime time.Duration

	Reap ReaperConfig
}

// ReaperConfig sizes the background deletion of rejected tokens.
type ReaperConfig struct {
	Workers   int
	QueueSize int
	// Timeout bounds a single delete.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration: a 7 day session in the
// CoreCMSAuthToken cookie.
func DefaultConfig() Config {
	return Config{
		CookieName:      DefaultCookieName,
		CookiePath:      "/",
		SessionLifetime: 7 * 24 * time.Hour,
		Reap: ReaperConfig{
			Workers:   2,
			QueueSize: 1024,
			Timeout:   5 * time.Second,
		},
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - CORECMS_AUTH_COOKIE_NAME
//   - CORECMS_AUTH_COOKIE_PATH
//   - CORECMS_AUTH_COOKIE_DOMAIN
//   - CORECMS_AUTH_SESSION_LIFETIME (Go duration)
//   - CORECMS_AUTH_REAP_WORKERS
//   - CORECMS_AUTH_REAP_QUEUE
//   - CORECMS_AUTH_REAP_TIMEOUT (Go duration)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("CORECMS_AUTH_COOKIE_NAME")); v != "" {
		if !validCookieName(v) {
			return Config{}, ErrConfig
		}
		cfg.CookieName = v
	}

	if v := strings.TrimSpace(os.Getenv("CORECMS_AUTH_COOKIE_PATH")); v != "" {
		if !strings.HasPrefix(v, "/") {
			return Config{}, ErrConfig
		}
		cfg.CookiePath = v
	}

	cfg.CookieDomain = strings.TrimSpace(os.Getenv("CORECMS_AUTH_COOKIE_DOMAIN"))

	if v := os.Getenv("CORECMS_AUTH_SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.SessionLifetime = d
	}

	if v := os.Getenv("CORECMS_AUTH_REAP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.Reap.Workers = n
	}

	if v := os.Getenv("CORECMS_AUTH_REAP_QUEUE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, ErrConfig
		}
		cfg.Reap.QueueSize = n
	}

	if v := os.Getenv("CORECMS_AUTH_REAP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.Reap.Timeout = d
	}

	return cfg, nil
}

// validCookieName accepts RFC 6265 token characters only.
func validCookieName(s string) bool {
	for _, r := range s {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune(`()<>@,;:\"/[]?={}`, r) {
			return false
		}
	}
	return s != ""
}
