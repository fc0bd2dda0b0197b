package authapi

import (
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior.
type Config struct {
	// OpenRegistration exposes POST /auth/register.
	OpenRegistration bool
	MaxBodyBytes     int64

	// AdminAccessLevel is the minimum access level allowed to create or
	// delete users. Zero lets any authenticated user do it.
	AdminAccessLevel int
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		OpenRegistration: envBool("CORECMS_AUTH_OPEN_REGISTRATION", false),
		MaxBodyBytes:     envInt64("CORECMS_AUTH_MAX_BODY_BYTES", 64<<10), // 64 KiB
		AdminAccessLevel: envInt("CORECMS_AUTH_ADMIN_ACCESS_LEVEL", 0),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
