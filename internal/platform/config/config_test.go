package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Sweeper.Interval)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Limits.Requests)
	assert.Equal(t, time.Minute, cfg.Limits.Window)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ONBOARDING_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("SWEEPER_INTERVAL", "1h")
	t.Setenv("SWEEPER_ENABLED", "false")
	t.Setenv("ANALYZER_CONCURRENCY", "8")
	t.Setenv("DISABLE_RATE_LIMITING", "true")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Sweeper.Interval)
	assert.False(t, cfg.Sweeper.Enabled)
	assert.Equal(t, 8, cfg.Analyzer.Concurrency)
	assert.True(t, cfg.Limits.Disabled)
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SWEEPER_INTERVAL", "daily")
	t.Setenv("ANALYZER_CONCURRENCY", "many")
	t.Setenv("SEED_DEMO_DATA", "sometimes")

	cfg := FromEnv()

	assert.Equal(t, 24*time.Hour, cfg.Sweeper.Interval)
	assert.Equal(t, 4, cfg.Analyzer.Concurrency)
	assert.False(t, cfg.Server.SeedDemoData)
}
