package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
)

type Config struct {
	Issuer  string // Optional: issuer claim for session tokens (default: bioauth)
	NumKeys int    // Optional: number of signing keys to generate (default: 3, max: 10)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./bioauth.db)
	DatabaseURL    string // Required for postgres: connection URL
	PepperFile     string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Threshold      int           // Optional: default Hamming distance threshold (default: 15)
	TemplateBits   int           // Optional: template length in bits (default: 128)
	StoreTimeout   time.Duration // Optional: per store round-trip timeout (default: 5s)
	AuditPassword  bool          // Optional: record password logins in the audit trail (default: false)
	RecentAttempts int           // Optional: attempts listed by the profile endpoint (default: 10)
	ExtractorURL   string        // Optional: feature extraction service; image probes are rejected without it
	SessionTTL     time.Duration // Optional: session token lifetime (default: 24h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogFile              string        // Optional: rotated log file receiving a copy of every record
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	defaults := service.DefaultPolicy()

	cfg := Config{
		Issuer:         getEnvOrDefault("BIOAUTH_ISSUER", "bioauth"),
		NumKeys:        getEnvIntOrDefault("BIOAUTH_NUM_KEYS", 0), // 0 lets the KeyManager pick
		DatabaseDriver: strings.ToLower(getEnvOrDefault("BIOAUTH_DATABASE_DRIVER", "sqlite")),
		DatabaseFile:   getEnvOrDefault("BIOAUTH_DATABASE_FILE", "bioauth.db"),
		DatabaseURL:    os.Getenv("BIOAUTH_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("BIOAUTH_PEPPER_FILE", "pepper"),

		Threshold:      getEnvIntOrDefault("BIOAUTH_THRESHOLD", defaults.DefaultThreshold),
		TemplateBits:   getEnvIntOrDefault("BIOAUTH_TEMPLATE_BITS", defaults.TemplateBits),
		StoreTimeout:   getEnvDurationOrDefault("BIOAUTH_STORE_TIMEOUT", defaults.StoreTimeout),
		AuditPassword:  getEnvBoolOrDefault("BIOAUTH_AUDIT_PASSWORD", false),
		RecentAttempts: getEnvIntOrDefault("BIOAUTH_RECENT_ATTEMPTS", defaults.RecentAttempts),
		ExtractorURL:   os.Getenv("BIOAUTH_EXTRACTOR_URL"),
		SessionTTL:     getEnvDurationOrDefault("BIOAUTH_SESSION_TTL", 24*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:              os.Getenv("LOG_FILE"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// A negative threshold can never accept anything, fall back to the default
	if cfg.Threshold < 0 {
		cfg.Threshold = defaults.DefaultThreshold
	}

	return cfg
}

// Policy returns the decision engine policy described by cfg.
func (cfg Config) Policy() service.Policy {
	p := service.Policy{
		TemplateBits:          cfg.TemplateBits,
		StoreTimeout:          cfg.StoreTimeout,
		AuditPasswordAttempts: cfg.AuditPassword,
		RecentAttempts:        cfg.RecentAttempts,
	}.WithDefaults()

	// Zero is a valid threshold (exact match only), so it is set after the
	// defaults are applied.
	p.DefaultThreshold = cfg.Threshold
	return p
}

// DSN returns the connection string for the configured driver.
func (cfg Config) DSN() string {
	if cfg.DatabaseDriver == DriverPostgres {
		return cfg.DatabaseURL
	}
	return cfg.DatabaseFile
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
