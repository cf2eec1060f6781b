// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	token := cfg.Freee.AccessToken
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Freee         FreeeConfig         `yaml:"freee"`
	Receipts      ReceiptsConfig      `yaml:"receipts"`
	Matching      MatchingConfig      `yaml:"matching"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// FreeeConfig holds freee API credentials
type FreeeConfig struct {
	AccessToken string `yaml:"access_token"`
	CompanyID   int64  `yaml:"company_id"`
}

// ReceiptsConfig holds receipt intake settings
type ReceiptsConfig struct {
	Dir          string `yaml:"dir"`
	LookbackDays int    `yaml:"lookback_days"`
}

// MatchingConfig holds matcher tolerances. An empty section means the
// matcher defaults; a populated one replaces them wholesale, it is not
// merged field by field.
type MatchingConfig struct {
	AmountTolerance float64 `yaml:"amount_tolerance"`
	DateTolerance   int     `yaml:"date_tolerance_days"`
	MinimumScore    float64 `yaml:"minimum_score"`
	AutoFileScore   float64 `yaml:"auto_file_score"`
}

// Criteria converts the config section to matcher criteria.
func (m MatchingConfig) Criteria() matcher.Criteria {
	if m.AmountTolerance == 0 && m.DateTolerance == 0 && m.MinimumScore == 0 {
		return matcher.DefaultCriteria()
	}
	return matcher.Criteria{
		AmountTolerance: m.AmountTolerance,
		DateTolerance:   m.DateTolerance,
		MinimumScore:    m.MinimumScore,
	}
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${FREEE_ACCESS_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Freee: FreeeConfig{
			AccessToken: os.Getenv("FREEE_ACCESS_TOKEN"),
			CompanyID:   int64(getEnvInt("FREEE_COMPANY_ID", 0)),
		},
		Receipts: ReceiptsConfig{
			Dir:          getEnv("RECEIPTS_DIR", "receipts"),
			LookbackDays: getEnvInt("RECEIPTS_LOOKBACK_DAYS", 30),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECEIPT_DB_PATH", "receipt_sync.db"),
		},
		API: APIConfig{
			Port: getEnvInt("API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
