package config

import (
	"github.com/stretchr/testify/assert"
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "SESSION_TTL", "DB_MAX_CONNS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int32(8), cfg.DBMaxConns)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", " a:1, ,b:2 ")
	t.Setenv("ORDER_CACHE_TTL", "90s")
	t.Setenv("IDEMPOTENCY_TTL", "nonsense")
	t.Setenv("SELLERSTATS_WORKERS", "3")
	t.Setenv("DB_MAX_CONNS", "-1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.OrderCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 3, cfg.SellerStatsWorkers)
	assert.Equal(t, int32(8), cfg.DBMaxConns)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}
