// Package config loads service configuration from the environment and
// provides hot-reloadable optimizer tuning from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	ShutdownTimeout time.Duration

	// AWS configuration
	AWSRegion         string
	DistributorsTable string
	OrdersTable       string
	StatusIndexName   string // GSI - for status-filtered directory scans
	EventBusName      string

	// Optimizer configuration
	StalenessWindow time.Duration
	BuildTimeout    time.Duration
	SearchMaxDepth  int
	SearchBudget    time.Duration

	// Tuning file for hot-reloadable optimizer knobs
	TuningFile string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		AWSRegion:         getEnv("AWS_REGION", "us-west-2"),
		DistributorsTable: getEnv("DISTRIBUTORS_TABLE", "supplynet-distributors"),
		OrdersTable:       getEnv("ORDERS_TABLE", "supplynet-orders"),
		StatusIndexName:   getEnv("STATUS_INDEX_NAME", "StatusIndex"),
		EventBusName:      getEnv("EVENT_BUS_NAME", "supplynet-events"),

		StalenessWindow: getEnvDuration("NETWORK_STALENESS_WINDOW", 60*time.Second),
		BuildTimeout:    getEnvDuration("NETWORK_BUILD_TIMEOUT", 30*time.Second),
		SearchMaxDepth:  getEnvInt("SEARCH_MAX_DEPTH", 10),
		SearchBudget:    getEnvDuration("SEARCH_TIME_BUDGET", 5*time.Second),

		TuningFile: getEnv("TUNING_FILE", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "supplynet-backend"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DistributorsTable == "" {
			return fmt.Errorf("DISTRIBUTORS_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	if c.SearchMaxDepth <= 0 {
		return fmt.Errorf("SEARCH_MAX_DEPTH must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
