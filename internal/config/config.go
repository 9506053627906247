package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Service-to-service authentication modes for the BizBox connector
const (
	BackendAuthModeNone   = "none"
	BackendAuthModeSimple = "simple"
	BackendAuthModeHMAC   = "hmac"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Metrics cache constants
const (
	MetricsCacheTypeMemory = "memory"
	MetricsCacheTypeRedis  = "redis"
)

// Log format constants
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultRole is granted to every user provisioned from BizBox
const DefaultRole = "default-roles-ezcaretech"

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Realm served by this instance
	Realm string

	// BizBox backend
	BizBoxTokenURL               string
	BizBoxProfileURL             string
	BizBoxTokenPath              string   // gjson path of the bearer token in the token response
	BizBoxCredentialFailureCodes []string // result codes that mean "wrong username or password"
	BizBoxTimeout                time.Duration
	BizBoxConnectTimeout         time.Duration
	BizBoxInsecureSkipVerify     bool
	BizBoxAuthMode               string // "none", "simple", or "hmac"
	BizBoxAuthSecret             string
	BizBoxAuthHeader             string // Custom header name for simple mode (default: "X-API-Secret")

	// Ezcaretech authenticator
	DefaultRoles []string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string // Bearer token for /metrics (empty = no auth)
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	MetricsCacheType           string // "memory" or "redis"

	// Rate limiting
	EnableRateLimit bool
	LoginRateLimit  int    // requests per minute per client IP
	RateLimitStore  string // "memory" or "redis"
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Timeouts
	DBInitTimeout         time.Duration
	RedisConnTimeout      time.Duration
	ServerShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "ezauth.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction:   getEnvBool("IS_PRODUCTION", false),
		SessionSecret:  getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge:  getEnvInt("SESSION_MAX_AGE", 3600),
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		Realm:          getEnv("REALM", "ezcaretech"),

		// BizBox backend
		BizBoxTokenURL:   getEnv("BIZBOX_TOKEN_URL", ""),
		BizBoxProfileURL: getEnv("BIZBOX_PROFILE_URL", ""),
		BizBoxTokenPath:  getEnv("BIZBOX_TOKEN_PATH", "token"),
		BizBoxCredentialFailureCodes: getEnvSlice(
			"BIZBOX_CREDENTIAL_FAILURE_CODES",
			[]string{},
		),
		BizBoxTimeout:            getEnvDuration("BIZBOX_TIMEOUT", 10*time.Second),
		BizBoxConnectTimeout:     getEnvDuration("BIZBOX_CONNECT_TIMEOUT", 5*time.Second),
		BizBoxInsecureSkipVerify: getEnvBool("BIZBOX_INSECURE_SKIP_VERIFY", false),
		BizBoxAuthMode:           getEnv("BIZBOX_AUTH_MODE", BackendAuthModeNone),
		BizBoxAuthSecret:         getEnv("BIZBOX_AUTH_SECRET", ""),
		BizBoxAuthHeader:         getEnv("BIZBOX_AUTH_HEADER", "X-API-Secret"),

		DefaultRoles: getEnvSlice("EZCARETECH_DEFAULT_ROLES", []string{DefaultRole}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", LogFormatText),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 5*time.Minute),
		MetricsCacheType:           getEnv("METRICS_CACHE_TYPE", MetricsCacheTypeMemory),

		EnableRateLimit: getEnvBool("ENABLE_RATE_LIMIT", true),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 5),
		RateLimitStore:  getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),

		DBInitTimeout:         getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		RedisConnTimeout:      getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// Validate checks the configuration for values that would fail at runtime
func (c *Config) Validate() error {
	var errs []error

	if c.BizBoxTokenURL == "" {
		errs = append(errs, errors.New("BIZBOX_TOKEN_URL is required"))
	}
	if c.BizBoxProfileURL == "" {
		errs = append(errs, errors.New("BIZBOX_PROFILE_URL is required"))
	}
	if c.BizBoxTokenPath == "" {
		errs = append(errs, errors.New("BIZBOX_TOKEN_PATH must not be empty"))
	}
	if c.BizBoxTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid BIZBOX_TIMEOUT value: %s", c.BizBoxTimeout))
	}
	if c.BizBoxConnectTimeout <= 0 {
		errs = append(
			errs,
			fmt.Errorf("invalid BIZBOX_CONNECT_TIMEOUT value: %s", c.BizBoxConnectTimeout),
		)
	}

	switch c.BizBoxAuthMode {
	case BackendAuthModeNone:
	case BackendAuthModeSimple, BackendAuthModeHMAC:
		if c.BizBoxAuthSecret == "" {
			errs = append(
				errs,
				fmt.Errorf("BIZBOX_AUTH_MODE=%q requires BIZBOX_AUTH_SECRET", c.BizBoxAuthMode),
			)
		}
	default:
		errs = append(errs, fmt.Errorf("invalid BIZBOX_AUTH_MODE value: %q", c.BizBoxAuthMode))
	}

	if len(c.DefaultRoles) == 0 {
		errs = append(errs, errors.New("EZCARETECH_DEFAULT_ROLES must name at least one role"))
	}
	if c.Realm == "" {
		errs = append(errs, errors.New("REALM must not be empty"))
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT value: %q", c.LogFormat))
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory:
	case RateLimitStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New(`RATE_LIMIT_STORE="redis" requires REDIS_ADDR`))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_STORE value: %q", c.RateLimitStore))
	}

	if c.MetricsEnabled && c.MetricsGaugeUpdateEnabled {
		if c.MetricsGaugeUpdateInterval <= 0 {
			errs = append(errs, fmt.Errorf(
				"invalid METRICS_GAUGE_UPDATE_INTERVAL value: %s",
				c.MetricsGaugeUpdateInterval,
			))
		}
		switch c.MetricsCacheType {
		case MetricsCacheTypeMemory:
		case MetricsCacheTypeRedis:
			if c.RedisAddr == "" {
				errs = append(errs, errors.New(`METRICS_CACHE_TYPE="redis" requires REDIS_ADDR`))
			}
		default:
			errs = append(
				errs,
				fmt.Errorf("invalid METRICS_CACHE_TYPE value: %q", c.MetricsCacheType),
			)
		}
	}

	if c.EnableRateLimit && c.LoginRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("invalid LOGIN_RATE_LIMIT value: %d", c.LoginRateLimit))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim spaces
		parts := []string{}
		for _, part := range splitAndTrim(value, ",") {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
