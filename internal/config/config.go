// Package config loads the application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store drivers selectable via STORE_DRIVER.
const (
	DriverJSONFile = "json"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	StoreDriver string // "json" or "sqlite"
	DataDir     string // directory for the JSON snapshot files
	DBPath      string // SQLite database path

	JWTSecret     string
	AdminPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Load reads configuration from environment variables, applying defaults
// where a value is optional. JWT_SECRET and ADMIN_PASSWORD have no
// defaults; the server must not start with guessable credentials.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg := &Config{
		ServerPort:  port,
		StoreDriver: getEnv("STORE_DRIVER", DriverJSONFile),
		DataDir:     getEnv("DATA_DIR", "./data"),
		DBPath:      getEnv("DB_PATH", "./newshub.db"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@newshub.local"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/users/google/callback"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be set")
	}
	if cfg.StoreDriver != DriverJSONFile && cfg.StoreDriver != DriverSQLite {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// SMTPEnabled reports whether outgoing mail is configured. Without a
// host, notifications fall back to the log sender.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// GoogleEnabled reports whether the server-side Google code flow is
// configured. The ID-token bridge works regardless.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
