package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv() {
	for _, key := range []string{
		"WORKFLOW_ENGINE_ENCRYPTION_KEY",
		"WORKFLOW_ENGINE_DEFAULT_MAX_ITERATIONS",
		"WORKFLOW_ENGINE_STEP_TIMEOUT",
		"WORKFLOW_ENGINE_REDIS_URL",
		"WORKFLOW_ENGINE_REDIS_PASSWORD",
		"WORKFLOW_ENGINE_REDIS_DB",
		"WORKFLOW_ENGINE_REDIS_POOL_SIZE",
		"WORKFLOW_ENGINE_REDIS_TTL",
		"WORKFLOW_ENGINE_STEP_TTL",
		"WORKFLOW_ENGINE_LOG_LEVEL",
		"WORKFLOW_ENGINE_LOG_FORMAT",
		"WORKFLOW_ENGINE_STATUS_JWT_SECRET",
		"WORKFLOW_ENGINE_STATUS_TOKEN_TTL",
	} {
		os.Unsetenv(key)
	}
}

func TestConfig_LoadDefaultValues(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Engine.EncryptionKey)
	assert.Equal(t, 10, cfg.Engine.DefaultMaxIterations)
	assert.Equal(t, 60*time.Second, cfg.Engine.StepTimeout)

	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 24*time.Hour, cfg.Redis.StepTTL)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, time.Minute, cfg.StatusCh.TokenTTL)
}

func TestConfig_LoadCustomValues(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("WORKFLOW_ENGINE_DEFAULT_MAX_ITERATIONS", "5")
	os.Setenv("WORKFLOW_ENGINE_STEP_TIMEOUT", "30s")
	os.Setenv("WORKFLOW_ENGINE_REDIS_URL", "redis://cache:6380")
	os.Setenv("WORKFLOW_ENGINE_LOG_LEVEL", "debug")
	os.Setenv("WORKFLOW_ENGINE_LOG_FORMAT", "text")
	os.Setenv("WORKFLOW_ENGINE_STATUS_JWT_SECRET", "a-sixteen-char-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Engine.DefaultMaxIterations)
	assert.Equal(t, 30*time.Second, cfg.Engine.StepTimeout)
	assert.Equal(t, "redis://cache:6380", cfg.Redis.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "a-sixteen-char-secret", cfg.StatusCh.JWTSecret)
}

func TestConfig_ValidateRejectsShortEncryptionKey(t *testing.T) {
	cfg := &Config{
		Engine:  EngineConfig{EncryptionKey: "tooshort", DefaultMaxIterations: 10},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENCRYPTION_KEY")
}

func TestConfig_ValidateRejectsOutOfRangeMaxIterations(t *testing.T) {
	cfg := &Config{
		Engine:  EngineConfig{DefaultMaxIterations: 100},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_MAX_ITERATIONS")
}

func TestConfig_ValidateRejectsInvalidLogLevel(t *testing.T) {
	cfg := &Config{
		Engine:  EngineConfig{DefaultMaxIterations: 10},
		Logging: LoggingConfig{Level: "verbose", Format: "json"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestConfig_ValidateRejectsShortJWTSecret(t *testing.T) {
	cfg := &Config{
		Engine:   EngineConfig{DefaultMaxIterations: 10},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		StatusCh: StatusChannelConfig{JWTSecret: "short"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
