package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8082", cfg.Server.GRPCPort)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Redis.SaleCacheTTL)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Empty(t, cfg.Auth.APIKey)
}

func TestLoadEnv_overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "")
	t.Setenv("REDIS_SALE_CACHE_TTL", "30s")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("TERMINAL_API_KEY", "secret")

	cfg := LoadEnv()

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Elastic.Addresses)
	assert.Equal(t, 30*time.Second, cfg.Redis.SaleCacheTTL)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, "secret", cfg.Auth.APIKey)
}
