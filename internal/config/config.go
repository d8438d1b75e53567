// Package config loads the engine's process configuration from
// environment variables. Grounded on backend/internal/config/config.go's
// getEnv*/Load/Validate shape, trimmed to the settings this engine (not
// the teacher's broader platform) actually consumes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the engine process needs at startup.
type Config struct {
	Engine   EngineConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	StatusCh StatusChannelConfig
}

// EngineConfig controls run-level defaults.
type EngineConfig struct {
	EncryptionKey        string
	DefaultMaxIterations int
	StepTimeout          time.Duration
}

// DefaultMaxIterationsBounds mirror the agent executor's own clamp (spec
// §4.5), duplicated here only for config-time validation.
const (
	minDefaultMaxIterations = 1
	maxDefaultMaxIterations = 25
)

// RedisConfig configures the durable-step runtime's backing store.
// Grounded on backend/internal/config/config.go's RedisConfig.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
	StepTTL  time.Duration
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// StatusChannelConfig controls the status channel's JWT-based subscriber
// authentication (spec §4.6: "short-lived token for that channel").
type StatusChannelConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads configuration from environment variables, applying a .env
// file first if one is present (godotenv.Load is a no-op if none exists).
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Engine: EngineConfig{
			EncryptionKey:        getEnv("WORKFLOW_ENGINE_ENCRYPTION_KEY", ""),
			DefaultMaxIterations: getEnvAsInt("WORKFLOW_ENGINE_DEFAULT_MAX_ITERATIONS", 10),
			StepTimeout:          getEnvAsDuration("WORKFLOW_ENGINE_STEP_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("WORKFLOW_ENGINE_REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("WORKFLOW_ENGINE_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("WORKFLOW_ENGINE_REDIS_DB", 0),
			PoolSize: getEnvAsInt("WORKFLOW_ENGINE_REDIS_POOL_SIZE", 10),
			StepTTL:  getEnvAsDuration("WORKFLOW_ENGINE_STEP_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("WORKFLOW_ENGINE_LOG_LEVEL", "info"),
			Format: getEnv("WORKFLOW_ENGINE_LOG_FORMAT", "json"),
		},
		StatusCh: StatusChannelConfig{
			JWTSecret: getEnv("WORKFLOW_ENGINE_STATUS_JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("WORKFLOW_ENGINE_STATUS_TOKEN_TTL", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for obviously-broken values.
func (c *Config) Validate() error {
	if len(c.Engine.EncryptionKey) > 0 && len(c.Engine.EncryptionKey) != 64 {
		return fmt.Errorf("WORKFLOW_ENGINE_ENCRYPTION_KEY must be a 64-character hex string (32 bytes), got %d characters", len(c.Engine.EncryptionKey))
	}
	if c.Engine.DefaultMaxIterations < minDefaultMaxIterations || c.Engine.DefaultMaxIterations > maxDefaultMaxIterations {
		return fmt.Errorf("WORKFLOW_ENGINE_DEFAULT_MAX_ITERATIONS must be between %d and %d", minDefaultMaxIterations, maxDefaultMaxIterations)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.StatusCh.JWTSecret != "" && len(c.StatusCh.JWTSecret) < 16 {
		return fmt.Errorf("WORKFLOW_ENGINE_STATUS_JWT_SECRET must be at least 16 characters")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
