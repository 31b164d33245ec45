package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "storefront", cfg.MongoDatabase)
	assert.Equal(t, 10*time.Second, cfg.MongoConnectTimeout)
	assert.False(t, cfg.MongoTransactions)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Zero(t, cfg.RelatedProductsLimit)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Equal(t, 50.0, cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PRODUCT_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("RELATED_PRODUCTS_LIMIT", "12")
	t.Setenv("MONGO_TRANSACTIONS", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 30*time.Second, cfg.ProductCacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, 12, cfg.RelatedProductsLimit)
	assert.True(t, cfg.MongoTransactions)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"JWT_SECRET_KEY": ""}, "JWT_SECRET_KEY"},
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
		{"zero page size", map[string]string{"DEFAULT_PAGE_SIZE": "0"}, "DEFAULT_PAGE_SIZE"},
		{"max below default", map[string]string{"MAX_PAGE_SIZE": "5"}, "MAX_PAGE_SIZE"},
		{"negative related limit", map[string]string{"RELATED_PRODUCTS_LIMIT": "-1"}, "RELATED_PRODUCTS_LIMIT"},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}, "RATE_LIMIT_BURST"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"bad duration", map[string]string{"PRODUCT_CACHE_TTL": "soon"}, "load storefront config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
