package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mr1hm/go-carbon-tracker/internal/emissions"
)

type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Sample   SampleConfig
	Analysis AnalysisConfig
	DB       DatabaseConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

// DatasetConfig points at supplier and shipment CSVs, either local paths or
// http(s) URLs. Both empty means the store keeps whatever it already holds.
type DatasetConfig struct {
	SuppliersSource string
	ShipmentsSource string
	FetchTimeout    time.Duration
}

type SampleConfig struct {
	Enabled   bool
	Seed      uint64
	Suppliers int
	Shipments int
}

type AnalysisConfig struct {
	Factors     emissions.FactorTable
	DefaultTopK int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	factors, err := emissions.ParseFactors(getEnv("EMISSION_FACTORS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid EMISSION_FACTORS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		Dataset: DatasetConfig{
			SuppliersSource: getEnv("SUPPLIERS_SOURCE", ""),
			ShipmentsSource: getEnv("SHIPMENTS_SOURCE", ""),
			FetchTimeout:    getEnvDuration("HTTP_FETCH_TIMEOUT", 15*time.Second),
		},
		Sample: SampleConfig{
			Enabled:   getEnvBool("SAMPLE_ENABLED", true),
			Seed:      getEnvUint64("SAMPLE_SEED", 42),
			Suppliers: getEnvInt("SAMPLE_SUPPLIERS", 12),
			Shipments: getEnvInt("SAMPLE_SHIPMENTS", 80),
		},
		Analysis: AnalysisConfig{
			Factors:     factors,
			DefaultTopK: getEnvInt("DEFAULT_TOP_K", 5),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/carbon-tracker.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if (c.Dataset.SuppliersSource == "") != (c.Dataset.ShipmentsSource == "") {
		return fmt.Errorf("SUPPLIERS_SOURCE and SHIPMENTS_SOURCE must be set together")
	}
	if c.Dataset.FetchTimeout <= 0 {
		return fmt.Errorf("HTTP fetch timeout must be positive")
	}

	if c.Sample.Suppliers < 0 || c.Sample.Shipments < 0 {
		return fmt.Errorf("invalid sample size: %d suppliers, %d shipments", c.Sample.Suppliers, c.Sample.Shipments)
	}
	if c.Analysis.DefaultTopK < 1 {
		return fmt.Errorf("invalid default top k: %d", c.Analysis.DefaultTopK)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvUint64(key string, fallback uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
