package session

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CookieName != "CoreCMSAuthToken" {
		t.Fatalf("cookie name mismatch: %q", cfg.CookieName)
	}
	if cfg.SessionLifetime != 7*24*time.Hour {
		t.Fatalf("lifetime mismatch: %v", cfg.SessionLifetime)
	}
}

func TestLoadConfigFromEnv_InvalidLifetime(t *testing.T) {
	t.Setenv("CORECMS_AUTH_SESSION_LIFETIME", "-5m")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative duration, got %v", err)
	}

	t.Setenv("CORECMS_AUTH_SESSION_LIFETIME", "a week")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for unparseable duration, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidCookie(t *testing.T) {
	t.Setenv("CORECMS_AUTH_COOKIE_NAME", "bad name;")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for invalid cookie name, got %v", err)
	}

	t.Setenv("CORECMS_AUTH_COOKIE_NAME", "ok")
	t.Setenv("CORECMS_AUTH_COOKIE_PATH", "relative")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for relative cookie path, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidReaper(t *testing.T) {
	t.Setenv("CORECMS_AUTH_REAP_WORKERS", "0")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for zero workers, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("CORECMS_AUTH_COOKIE_NAME", "cms_session")
	t.Setenv("CORECMS_AUTH_COOKIE_PATH", "/admin")
	t.Setenv("CORECMS_AUTH_COOKIE_DOMAIN", "cms.example.com")
	t.Setenv("CORECMS_AUTH_SESSION_LIFETIME", "48h")
	t.Setenv("CORECMS_AUTH_REAP_WORKERS", "4")
	t.Setenv("CORECMS_AUTH_REAP_QUEUE", "16")
	t.Setenv("CORECMS_AUTH_REAP_TIMEOUT", "2s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CookieName != "cms_session" || cfg.CookiePath != "/admin" || cfg.CookieDomain != "cms.example.com" {
		t.Fatalf("cookie config mismatch: %+v", cfg)
	}
	if cfg.SessionLifetime != 48*time.Hour {
		t.Fatalf("lifetime mismatch: %v", cfg.SessionLifetime)
	}
	if cfg.Reap.Workers != 4 || cfg.Reap.QueueSize != 16 || cfg.Reap.Timeout != 2*time.Second {
		t.Fatalf("reaper config mismatch: %+v", cfg.Reap)
	}
}
