package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/event"
)

var mongoCommandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mongo_command_duration_seconds",
		Help:    "Duration of MongoDB commands in seconds",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"service", "command", "status"},
)

// ignoredCommands are driver handshakes and heartbeats that would drown out
// application traffic.
var ignoredCommands = map[string]struct{}{
	"hello":        {},
	"isMaster":     {},
	"ismaster":     {},
	"ping":         {},
	"saslStart":    {},
	"saslContinue": {},
	"endSessions":  {},
}

// NewCommandMonitor returns a driver command monitor that records every
// application command in the mongo_command_duration_seconds histogram and
// logs commands slower than the threshold set by SetSlowQueryLogging.
func NewCommandMonitor(service string) *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			observeCommand(ctx, service, e.CommandName, "ok", e.Duration, "")
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			observeCommand(ctx, service, e.CommandName, "error", e.Duration, e.Failure)
		},
	}
}

func observeCommand(ctx context.Context, service, command, status string, d time.Duration, failure string) {
	if _, skip := ignoredCommands[command]; skip {
		return
	}
	mongoCommandDuration.WithLabelValues(service, command, status).Observe(d.Seconds())

	if threshold, logger := getSlowQueryConfig(); threshold > 0 && logger != nil && d >= threshold {
		attrs := []any{
			slog.String("command", command),
			slog.Duration("duration", d),
		}
		if failure != "" {
			attrs = append(attrs, slog.String("error", failure))
		}
		logger.WarnContext(ctx, "slow mongo command", attrs...)
	}
}
