package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as server settings, the report history database and report rendering.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=permitpulse
//	MAX_UPLOAD_MB=10
//	REPORT_CACHE_TTL=15m
//	CURRENCY_SYMBOL=R
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings (report history)
	Report   ReportConfig   // Report rendering and transient storage
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        // The TCP port the HTTP server will listen on (e.g., "8080")
	MaxUploadMB        int64         // Largest accepted multipart body, in megabytes
	RateLimitPerMinute int           // Requests per client IP per minute
	RequestTimeout     time.Duration // Deadline applied to every request context
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - MigrateOnStart: apply embedded goose migrations during start-up.
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrateOnStart bool
	URL            string
}

// ReportConfig controls report presentation and the transient PDF store.
type ReportConfig struct {
	Title          string        // Heading printed on HTML and PDF reports
	CurrencyLabel  string        // Currency name shown next to revenue (e.g., "Rands")
	CurrencySymbol string        // Currency symbol prefixed to amounts (e.g., "R")
	CacheSize      int           // Max rendered PDFs kept in memory
	CacheTTL       time.Duration // How long a rendered PDF stays downloadable
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = fromViper()

	validateConfig()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("REQUEST_TIMEOUT", "30s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "permitpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("MIGRATE_ON_START", true)

	viper.SetDefault("REPORT_TITLE", "Transaction Report")
	viper.SetDefault("CURRENCY_LABEL", "Rands")
	viper.SetDefault("CURRENCY_SYMBOL", "R")
	viper.SetDefault("REPORT_CACHE_SIZE", 128)
	viper.SetDefault("REPORT_CACHE_TTL", "15m")
}

func fromViper() Config {
	cfg := Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			MaxUploadMB:        viper.GetInt64("MAX_UPLOAD_MB"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			RequestTimeout:     viper.GetDuration("REQUEST_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Host:           viper.GetString("POSTGRES_HOST"),
			Port:           viper.GetInt("POSTGRES_PORT"),
			User:           viper.GetString("POSTGRES_USER"),
			Password:       viper.GetString("POSTGRES_PASSWORD"),
			DBName:         viper.GetString("POSTGRES_DB"),
			SSLMode:        viper.GetString("POSTGRES_SSLMODE"),
			MigrateOnStart: viper.GetBool("MIGRATE_ON_START"),
		},
		Report: ReportConfig{
			Title:          viper.GetString("REPORT_TITLE"),
			CurrencyLabel:  viper.GetString("CURRENCY_LABEL"),
			CurrencySymbol: viper.GetString("CURRENCY_SYMBOL"),
			CacheSize:      viper.GetInt("REPORT_CACHE_SIZE"),
			CacheTTL:       viper.GetDuration("REPORT_CACHE_TTL"),
		},
	}
	cfg.Postgres.URL = cfg.Postgres.DSN()
	return cfg
}

// DSN builds the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// missingKeys returns the names of required settings that are empty or non-positive.
func (c Config) missingKeys() []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Server.MaxUploadMB <= 0 {
		missing = append(missing, "MAX_UPLOAD_MB")
	}
	if c.Server.RequestTimeout <= 0 {
		missing = append(missing, "REQUEST_TIMEOUT")
	}
	if c.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if c.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if c.Report.CacheSize <= 0 {
		missing = append(missing, "REPORT_CACHE_SIZE")
	}
	if c.Report.CacheTTL <= 0 {
		missing = append(missing, "REPORT_CACHE_TTL")
	}

	return missing
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	if missing := AppConfig.missingKeys(); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
