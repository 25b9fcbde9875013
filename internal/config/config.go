// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Server
	Port               string
	CORSAllowedOrigins []string
	MaxImportBytes     int64

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Collaborators
	CardmarketPriceGuidesURL string
	ScryfallBaseURL          string
	ScryfallRatePerSecond    int
	EDHRECBaseURL            string
	NATSURL                  string
	NATSToken                string

	// Timing
	ValuationInterval   time.Duration
	PriceImportInterval time.Duration
	WorkerEnabled       bool

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               envStr("PORT", "8080"),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		MaxImportBytes:     int64(envInt("MAX_IMPORT_BYTES", 10<<20)),

		DBDriver:    strings.ToLower(envStr("DB_DRIVER", DriverSQLite)),
		DBPath:      envStr("DB_PATH", "./ccpt.db"),
		DatabaseURL: envStr("DATABASE_URL", ""),

		CardmarketPriceGuidesURL: envStr("CARDMARKET_PRICE_GUIDES_URL", ""),
		ScryfallBaseURL:          envStr("SCRYFALL_BASE_URL", ""),
		ScryfallRatePerSecond:    envInt("SCRYFALL_RATE_PER_SECOND", 8),
		EDHRECBaseURL:            envStr("EDHREC_BASE_URL", ""),
		NATSURL:                  envStr("NATS_URL", ""),
		NATSToken:                envStr("NATS_TOKEN", ""),

		ValuationInterval:   envDuration("VALUATION_INTERVAL", time.Hour),
		PriceImportInterval: envDuration("PRICE_IMPORT_INTERVAL", 24*time.Hour),
		WorkerEnabled:       envBool("WORKER_ENABLED", true),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "text"),
	}
}

func (c *Config) Validate() error {
	var errs []string

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}
	if c.ScryfallRatePerSecond <= 0 {
		errs = append(errs, "SCRYFALL_RATE_PER_SECOND must be positive")
	}
	if c.ValuationInterval <= 0 || c.PriceImportInterval <= 0 {
		errs = append(errs, "VALUATION_INTERVAL and PRICE_IMPORT_INTERVAL must be positive")
	}
	if c.MaxImportBytes <= 0 {
		errs = append(errs, "MAX_IMPORT_BYTES must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// SetupLogging applies the log level and format to the standard logrus logger.
func (c *Config) SetupLogging() {
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
