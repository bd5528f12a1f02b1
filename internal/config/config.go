package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"gosubgroup/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Search   SearchConfig   `validate:"required"`
	Data     DataConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds the run store connection settings
type DatabaseConfig struct {
	Driver string `validate:"required,oneof=postgres sqlite"`
	URL    string `validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// SearchConfig holds the default search parameters. Task files override
// individual fields.
type SearchConfig struct {
	Strategy        string   `json:"strategy,omitempty" yaml:"strategy" validate:"omitempty,oneof=beam dfs best-first"`
	BeamWidth       int      `json:"beam_width,omitempty" yaml:"beam_width" validate:"min=1"`
	Depth           int      `json:"depth,omitempty" yaml:"depth" validate:"min=1"`
	ResultCap       int      `json:"result_cap,omitempty" yaml:"result_cap" validate:"min=1"`
	NChunks         int      `json:"n_chunks,omitempty" yaml:"n_chunks" validate:"min=1"`
	Schedule        string   `json:"schedule,omitempty" yaml:"schedule" validate:"omitempty,oneof=reciprocal even"`
	EnsureDiversity bool     `json:"ensure_diversity,omitempty" yaml:"ensure_diversity"`
	MinCoverage     float64  `json:"min_coverage,omitempty" yaml:"min_coverage" validate:"gte=0,lte=1"`
	Features        []string `json:"features,omitempty" yaml:"features"`
	Quality         string   `json:"quality,omitempty" yaml:"quality" validate:"omitempty,oneof=wracc standard"`
	A               float64  `json:"a,omitempty" yaml:"a" validate:"gte=0"`
	// Permutations > 0 runs a label permutation test on every result
	Permutations int `json:"permutations,omitempty" yaml:"permutations" validate:"gte=0"`
}

// DataConfig holds data processing settings
type DataConfig struct {
	// Dir is where the API resolves dataset paths
	Dir string
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Search:   LoadSearchConfig(),
		Data:     DataConfig{Dir: getEnvOrDefault("DATA_DIR", ".")},
		Metrics:  MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
	}

	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver: getEnvOrDefault("DB_DRIVER", "sqlite"),
		URL:    getEnvOrDefault("DATABASE_URL", "gosubgroup.db"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ReadTimeout:     getEnvDurationOrDefault("READ_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// LoadSearchConfig reads the search defaults from the environment
func LoadSearchConfig() SearchConfig {
	return SearchConfig{
		Strategy:        getEnvOrDefault("STRATEGY", "beam"),
		BeamWidth:       getEnvIntOrDefault("BEAM_WIDTH", 10),
		Depth:           getEnvIntOrDefault("DEPTH", 2),
		ResultCap:       getEnvIntOrDefault("RESULT_CAP", 10),
		NChunks:         getEnvIntOrDefault("N_CHUNKS", 5),
		Schedule:        getEnvOrDefault("PERCENTILE_SCHEDULE", "reciprocal"),
		EnsureDiversity: getEnvBoolOrDefault("ENSURE_DIVERSITY", false),
		MinCoverage:     getEnvFloatOrDefault("MIN_COVERAGE", 0.02),
		Quality:         getEnvOrDefault("QUALITY", "wracc"),
		A:               getEnvFloatOrDefault("QUALITY_A", 1),
		Permutations:    getEnvIntOrDefault("PERMUTATIONS", 0),
	}
}

// Validate checks search parameters built outside Load
func (s SearchConfig) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.ValidationError(err.Error())
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
