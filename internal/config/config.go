package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Data files
	StorageDir  string // Directory for the working snapshot and backups
	SourceFile  string // Read-only seed CSV, used only when no working snapshot exists
	WorkingFile string // Working snapshot CSV, written on every save

	// Optional Postgres snapshot store. When set, replaces the working file.
	DatabaseURL string

	// Optional Redis view cache. When empty an in-memory cache is used.
	RedisURL string

	// Name suggestion
	AnthropicAPIKey   string
	SuggestConfigFile string // Optional YAML tuning file for the suggester

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// Backups of the working file
	BackupInterval time.Duration // 0 disables periodic backups
	BackupKeep     int           // How many timestamped backups to retain
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	storageDir := getEnv("STORAGE_DIR", "storage")

	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		StorageDir:  storageDir,
		SourceFile:  getEnv("SOURCE_FILE", "files/unique_ein_spons.csv"),
		WorkingFile: getEnv("WORKING_FILE", filepath.Join(storageDir, "working_data.csv")),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		AnthropicAPIKey:   getEnv("API_KEY", ""),
		SuggestConfigFile: getEnv("SUGGEST_CONFIG_FILE", "suggest.yaml"),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:8000/auth/callback"),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),

		BackupInterval: getEnvDuration("BACKUP_INTERVAL", 0),
		BackupKeep:     getEnvInt("BACKUP_KEEP", 5),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// UsePostgres returns true when snapshots should live in Postgres instead of
// the working file.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// OIDCEnabled returns true when operator login is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
