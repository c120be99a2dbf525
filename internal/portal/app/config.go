package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Issuer claim for access tokens

	SigningKeyFile string // Optional: PKCS8 Ed25519 private key; ephemeral when empty
	DatabaseFile   string // Path to SQLite database file (default: ./portal.db)
	PepperFile     string // Path to password hashing pepper file (default: ./pepper)

	SMTPAddr string // host:port of the mail relay; mail is logged when empty
	SMTPFrom string // From address for outgoing mail

	CookieSecure  bool          // Set the Secure flag on the session cookie
	NotifyTimeout time.Duration // Timeout for outbound mail (default: 5s)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	CleanupInterval     time.Duration // Expired session/token sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              getEnvOrDefault("PORTAL_ISSUER", "campus-portal"),
		SigningKeyFile:      os.Getenv("PORTAL_SIGNING_KEY_FILE"),
		DatabaseFile:        getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		PepperFile:          getEnvOrDefault("PORTAL_PEPPER_FILE", "pepper"),
		SMTPAddr:            os.Getenv("PORTAL_SMTP_ADDR"),
		SMTPFrom:            getEnvOrDefault("PORTAL_SMTP_FROM", "no-reply@portal.local"),
		CookieSecure:        getEnvBoolOrDefault("PORTAL_COOKIE_SECURE", false),
		NotifyTimeout:       getEnvDurationOrDefault("PORTAL_NOTIFY_TIMEOUT", 5*time.Second),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		CleanupInterval:     getEnvDurationOrDefault("PORTAL_CLEANUP_INTERVAL", 1*time.Hour),
	}

	return cfg
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

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
