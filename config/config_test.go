package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, "shopify.orders", cfg.Kafka.Topic)
	assert.Equal(t, "availability", cfg.Kafka.GroupID)
	assert.Equal(t, "@hourly", cfg.Sweep.Spec)
	assert.Equal(t, 5*time.Minute, cfg.Widget.CacheTTL)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("WIDGET_CACHE_TTL", "90s")
	t.Setenv("SWEEP_LOCK_TTL", "not-a-duration")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg := LoadEnv()

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Widget.CacheTTL)
	assert.Equal(t, 50*time.Minute, cfg.Sweep.LockTTL)
	assert.False(t, cfg.Server.AutoMigrate)
}
