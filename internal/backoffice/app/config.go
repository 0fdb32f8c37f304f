package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string        // issuer claim for access tokens (default: escritorio-backoffice)
	AccessTTL      time.Duration // access token lifetime (default: 15m)
	RefreshTTL     time.Duration // refresh token lifetime (default: 7d)
	SigningKeyFile string        // Ed25519 PEM key, created on first start (default: ./signing.pem)
	DatabaseFile   string        // path to SQLite database file (default: ./backoffice.db)
	PepperFile     string        // password pepper, also seals TOTP seeds (default: ./pepper)
	AllowedOrigins string        // comma separated CORS origins, empty disables CORS headers

	BootstrapUsername string // Optional: admin created when the users table is empty
	BootstrapPassword string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	LicenseExpiryWarning time.Duration // how early a license counts as expiring (default: 30 days)
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first; variables already set in the process win.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:               getEnvOrDefault("BACKOFFICE_ISSUER", "escritorio-backoffice"),
		AccessTTL:            getEnvDurationOrDefault("BACKOFFICE_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:           getEnvDurationOrDefault("BACKOFFICE_REFRESH_TTL", 7*24*time.Hour),
		SigningKeyFile:       getEnvOrDefault("BACKOFFICE_SIGNING_KEY_FILE", "signing.pem"),
		DatabaseFile:         getEnvOrDefault("BACKOFFICE_DATABASE_FILE", "backoffice.db"),
		PepperFile:           getEnvOrDefault("BACKOFFICE_PEPPER_FILE", "pepper"),
		AllowedOrigins:       os.Getenv("BACKOFFICE_ALLOWED_ORIGINS"),
		BootstrapUsername:    os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapPassword:    os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		LicenseExpiryWarning: getEnvDurationOrDefault("LICENSE_EXPIRY_WARNING", 30*24*time.Hour),
	}
}

// DSN is the sqlite connection string for the configured database file.
func (c Config) DSN() string {
	return DSN(c.DatabaseFile)
}

// DSN builds a sqlite connection string. ":memory:" is passed through.
func DSN(file string) string {
	if file == ":memory:" {
		return file
	}
	return "file:" + file + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
