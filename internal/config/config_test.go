package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_PATH", "VALUATION_INTERVAL", "SCRYFALL_RATE_PER_SECOND", "MAX_IMPORT_BYTES", "LOG_LEVEL", "PRICE_IMPORT_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./ccpt.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.ValuationInterval)
	assert.Equal(t, 8, cfg.ScryfallRatePerSecond)
	assert.Equal(t, int64(10<<20), cfg.MaxImportBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/ccpt")
	t.Setenv("VALUATION_INTERVAL", "15m")
	t.Setenv("SCRYFALL_RATE_PER_SECOND", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("WORKER_ENABLED", "no")

	cfg := Load()
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.ValuationInterval)
	assert.Equal(t, 4, cfg.ScryfallRatePerSecond)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.WorkerEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("VALUATION_INTERVAL", "often")
	t.Setenv("SCRYFALL_RATE_PER_SECOND", "fast")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.ValuationInterval)
	assert.Equal(t, 8, cfg.ScryfallRatePerSecond)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:              DriverSQLite,
			DBPath:                "test.db",
			ScryfallRatePerSecond: 8,
			ValuationInterval:     time.Hour,
			PriceImportInterval:   time.Hour,
			MaxImportBytes:        1024,
			LogLevel:              "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"postgres without url", func(c *Config) { c.DBDriver = DriverPostgres }, "DATABASE_URL"},
		{"zero rate", func(c *Config) { c.ScryfallRatePerSecond = 0 }, "SCRYFALL_RATE_PER_SECOND"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
