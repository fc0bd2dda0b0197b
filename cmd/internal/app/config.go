package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	// DBMigrate applies the embedded migrations at startup.
	DBMigrate bool

	// RedisAddr switches login tokens to Redis. Users stay in Postgres or memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MetricsEnabled bool

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// Security policy:
	// If true, CORECMS_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and token digests must be HMAC-based.
	RequireTokenHMAC bool

	// TrustProxy makes client IP resolution honor X-Forwarded-For and X-Real-IP.
	TrustProxy bool
	// TrustedProxyHops is the number of trusted proxies in front of the server.
	TrustedProxyHops int

	// BootstrapUsername/BootstrapPassword create an initial user at startup
	// when no user with that name exists.
	BootstrapUsername    string
	BootstrapPassword    string
	BootstrapAccessLevel int
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CORECMS_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CORECMS_LOG_LEVEL", "info"),
		LogFormat: EnvString("CORECMS_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CORECMS_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CORECMS_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CORECMS_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CORECMS_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CORECMS_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("CORECMS_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CORECMS_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CORECMS_DB_MIN_CONNS", 0),
		DBMigrate:   EnvBool("CORECMS_DB_MIGRATE", true),

		RedisAddr:     EnvString("CORECMS_REDIS_ADDR", ""),
		RedisPassword: EnvString("CORECMS_REDIS_PASSWORD", ""),
		RedisDB:       EnvInt("CORECMS_REDIS_DB", 0),

		MetricsEnabled: EnvBool("CORECMS_METRICS_ENABLED", true),

		ReadinessRequireDB: EnvBool("CORECMS_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("CORECMS_REQUIRE_TOKEN_HMAC", false),

		TrustProxy:       EnvBool("CORECMS_TRUST_PROXY", false),
		TrustedProxyHops: EnvInt("CORECMS_TRUSTED_PROXY_HOPS", 1),

		BootstrapUsername:    EnvString("CORECMS_BOOTSTRAP_USERNAME", ""),
		BootstrapPassword:    EnvString("CORECMS_BOOTSTRAP_PASSWORD", ""),
		BootstrapAccessLevel: EnvInt("CORECMS_BOOTSTRAP_ACCESS_LEVEL", 100),
	}
}
