package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cartflow/storefront/pkg/httputil"
)

// RateLimitConfig configures per-client token buckets. A non-positive RPS
// disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// IdleTTL is how long an unused bucket is kept before it is evicted.
	IdleTTL time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientBuckets holds one limiter per client address.
type clientBuckets struct {
	mu        sync.Mutex
	buckets   map[netip.Addr]*bucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newClientBuckets(cfg RateLimitConfig) *clientBuckets {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	burst := max(cfg.Burst, 1)
	return &clientBuckets{
		buckets: make(map[netip.Addr]*bucket),
		limit:   rate.Limit(cfg.RPS),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// allow takes a token for addr. When the bucket is empty it also returns how
// long until the next token.
func (c *clientBuckets) allow(addr netip.Addr) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > c.ttl {
		c.sweep(now)
	}

	b, ok := c.buckets[addr]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.buckets[addr] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// sweep evicts buckets idle for longer than the TTL. Callers hold mu.
func (c *clientBuckets) sweep(now time.Time) {
	for addr, b := range c.buckets {
		if now.Sub(b.lastSeen) > c.ttl {
			delete(c.buckets, addr)
		}
	}
	c.lastSweep = now
}

func (c *clientBuckets) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// RateLimit enforces a token bucket per client address and answers 429 with a
// Retry-After header once a client's bucket is empty.
func RateLimit(cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return rateLimit(newClientBuckets(cfg), logger)
}

func rateLimit(clients *clientBuckets, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := remoteAddr(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, wait := clients.allow(addr)
			if !allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("client", addr.String()),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				secs := max(int(wait.Round(time.Second)/time.Second), 1)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httputil.WriteMessage(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
