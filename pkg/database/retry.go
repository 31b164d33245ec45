package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryPolicy controls how connection attempts are repeated at startup. The
// zero value makes a single attempt.
type RetryPolicy struct {
	Attempts int
	BaseWait time.Duration
	// Jitter is the fraction of each wait randomized in both directions.
	Jitter float64
}

// DefaultRetryPolicy makes three attempts, waiting 1s then 2s, each ±25%.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseWait: time.Second, Jitter: 0.25}
}

func (p RetryPolicy) attempts() int {
	return max(p.Attempts, 1)
}

// backoff returns the wait after the given failed attempt (0-indexed). The
// base wait doubles each attempt.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseWait << max(attempt, 0)
	jitter := time.Duration(float64(base) * p.Jitter * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
	return base + jitter
}

// connectWithRetry calls dial until it succeeds, the policy is exhausted or
// ctx ends. A nil logger silences retry warnings.
func connectWithRetry[T any](ctx context.Context, p RetryPolicy, logger *slog.Logger, target string, dial func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	n := p.attempts()
	for attempt := range n {
		conn, err := dial(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt == n-1 {
			break
		}

		wait := p.backoff(attempt)
		if logger != nil {
			logger.Warn(target+" connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", n),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("connect to %s: context canceled during retry: %w", target, ctx.Err())
		case <-time.After(wait):
		}
	}
	return zero, fmt.Errorf("connect to %s after %d attempts: %w", target, n, lastErr)
}
