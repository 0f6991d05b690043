// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/pkg/logger"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ResultsDir string // Where CSV reports and snapshots are written (always absolute)
	FixtureDir string // Where stock fixtures are read from and written to (always absolute)
	Seed       uint64 // 0 means derive from the clock
	LogLevel   string
	LogPretty  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	resultsDir, err := filepath.Abs(getEnv("DISPOSITION_RESULTS_DIR", "results"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve results directory path: %w", err)
	}
	fixtureDir, err := filepath.Abs(getEnv("DISPOSITION_FIXTURE_DIR", "testdata"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fixture directory path: %w", err)
	}

	seed, err := getEnvAsUint("DISPOSITION_SEED", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ResultsDir: resultsDir,
		FixtureDir: fixtureDir,
		Seed:       seed,
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogPretty:  getEnvAsBool("LOG_PRETTY", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ResultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("%w: results directory is empty", domain.ErrConfiguration)
	}
	return nil
}

// FixturePath resolves a fixture file name against FixtureDir. Absolute names pass through.
func (c *Config) FixturePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.FixtureDir, name)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsUint fails on malformed values instead of falling back
func getEnvAsUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an unsigned integer", domain.ErrConfiguration, key, value)
	}
	return parsed, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
