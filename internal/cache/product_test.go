package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartflow/storefront/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewProductCache(client, time.Minute, DefaultBreakerConfig("test-"+t.Name()), newTestLogger()), mr
}

func sampleDetail() *domain.ProductDetail {
	return &domain.ProductDetail{
		Product: &domain.Product{
			ID:       "p1",
			Name:     "Desk Lamp",
			Category: domain.CategoryHome,
			Price:    30,
			Rating:   4,
			Author:   &domain.Author{ID: "u1", Username: "ada", Email: "ada@example.com"},
		},
		Reviews: []domain.Review{{ID: "r1", ProductID: "p1", UserID: "u2", Comment: "bright", Rating: 4}},
	}
}

func TestProductCache_SetThenGet(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	c.SetDetail(ctx, sampleDetail())

	assert.True(t, mr.Exists(keyPrefix+"p1"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"p1"))

	got, ok := c.GetDetail(ctx, "p1")
	require.True(t, ok)
	assert.Equal(t, "Desk Lamp", got.Product.Name)
	assert.Equal(t, "ada", got.Product.Author.Username)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "bright", got.Reviews[0].Comment)
}

func TestProductCache_Miss(t *testing.T) {
	c, _ := setupTestCache(t)

	got, ok := c.GetDetail(context.Background(), "unknown")

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestProductCache_Expires(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	c.SetDetail(ctx, sampleDetail())

	mr.FastForward(2 * time.Minute)

	_, ok := c.GetDetail(ctx, "p1")
	assert.False(t, ok)
}

func TestProductCache_Invalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	c.SetDetail(ctx, sampleDetail())

	c.Invalidate(ctx, "p1")

	assert.False(t, mr.Exists(keyPrefix+"p1"))
	_, ok := c.GetDetail(ctx, "p1")
	assert.False(t, ok)
}

func TestProductCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set(keyPrefix+"p1", "{not json"))

	_, ok := c.GetDetail(context.Background(), "p1")

	assert.False(t, ok)
	assert.False(t, mr.Exists(keyPrefix+"p1"))
}

func TestProductCache_SetIgnoresEmptyDetail(t *testing.T) {
	c, mr := setupTestCache(t)

	c.SetDetail(context.Background(), &domain.ProductDetail{})

	assert.Empty(t, mr.Keys())
}

func TestProductCache_BreakerOpensWhenRedisDown(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	mr.Close()

	for i := 0; i < 5; i++ {
		_, ok := c.GetDetail(ctx, "p1")
		assert.False(t, ok)
	}

	assert.Equal(t, gobreaker.StateOpen, c.breaker.State())

	_, ok := c.GetDetail(ctx, "p1")
	assert.False(t, ok, "open breaker degrades to a miss")
}

func TestNop(t *testing.T) {
	var n Nop
	ctx := context.Background()

	n.SetDetail(ctx, sampleDetail())
	n.Invalidate(ctx, "p1")
	got, ok := n.GetDetail(ctx, "p1")

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStateToFloat(t *testing.T) {
	assert.Equal(t, 0.0, stateToFloat(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateToFloat(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateToFloat(gobreaker.StateOpen))
}
