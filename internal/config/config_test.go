package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.HaikuModel)
	assert.Equal(t, 25, cfg.AI.BatchSize)
	assert.Equal(t, int64(4096), cfg.AI.MaxTokens)
	assert.InDelta(t, 1.00, cfg.AI.CostThreshold, 0.001)
	assert.True(t, cfg.AI.EnableFallback)
	assert.True(t, cfg.AI.EnableCaching)
	assert.Equal(t, 1<<20, cfg.Security.MaxInputBytes)
	assert.Equal(t, 10000, cfg.Security.MaxLineLength)
	assert.InDelta(t, 0.10, cfg.Security.ControlCharRatio, 0.001)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEADINTAKE_STORE_DRIVER", "sqlite")
	t.Setenv("LEADINTAKE_AI_BATCH_SIZE", "10")
	t.Setenv("LEADINTAKE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 10, cfg.AI.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestAIConfigDurations(t *testing.T) {
	cfg := AIConfig{
		RequestTimeout:  60,
		BatchIntervalMS: 1000,
		CacheTTLMinutes: 30,
	}

	assert.Equal(t, 60*time.Second, cfg.RequestTimeoutDuration())
	assert.Equal(t, time.Second, cfg.BatchInterval())
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL())
}

func TestSecurityConfigRetention(t *testing.T) {
	cfg := SecurityConfig{AuditRetentionDays: 90}
	assert.Equal(t, 90*24*time.Hour, cfg.AuditRetention())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
