// Package cache holds the Redis cache-aside layer for product detail reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/cartflow/storefront/internal/domain"
)

const keyPrefix = "product:detail:"

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "product_cache_requests_total",
		Help: "Product detail cache lookups by result (hit, miss, error).",
	},
	[]string{"result"},
)

// ProductCache stores product details in Redis. Every failure, including an
// open breaker, degrades to a cache miss; the store stays authoritative.
type ProductCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// NewProductCache creates a Redis-backed product detail cache.
func NewProductCache(client *redis.Client, ttl time.Duration, cfg BreakerConfig, logger *slog.Logger) *ProductCache {
	return &ProductCache{
		client:  client,
		ttl:     ttl,
		breaker: newBreaker(cfg, logger),
		logger:  logger,
	}
}

// GetDetail returns the cached detail for a product, if any.
func (c *ProductCache) GetDetail(ctx context.Context, productID string) (*domain.ProductDetail, bool) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		b, err := c.client.Get(ctx, keyPrefix+productID).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "product cache get failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if data == nil {
		cacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}

	var detail domain.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		c.Invalidate(ctx, productID)
		return nil, false
	}
	cacheRequests.WithLabelValues("hit").Inc()
	return &detail, true
}

// SetDetail caches the detail of a product for the configured TTL.
func (c *ProductCache) SetDetail(ctx context.Context, detail *domain.ProductDetail) {
	if detail == nil || detail.Product == nil {
		return
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, keyPrefix+detail.Product.ID, data, c.ttl).Err()
	})
	if err != nil {
		c.logger.WarnContext(ctx, "product cache set failed",
			slog.String("product_id", detail.Product.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate drops the cached detail of a product.
func (c *ProductCache) Invalidate(ctx context.Context, productID string) {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, keyPrefix+productID).Err()
	})
	if err != nil {
		c.logger.WarnContext(ctx, "product cache invalidate failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

// Ping checks Redis reachability for readiness probes.
func (c *ProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Nop is a cache that never stores anything. It is used when Redis is not
// configured.
type Nop struct{}

// GetDetail always misses.
func (Nop) GetDetail(context.Context, string) (*domain.ProductDetail, bool) { return nil, false }

// SetDetail does nothing.
func (Nop) SetDetail(context.Context, *domain.ProductDetail) {}

// Invalidate does nothing.
func (Nop) Invalidate(context.Context, string) {}
