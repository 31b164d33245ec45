// Package health serves liveness and readiness probes over the storefront's
// dependencies.
package health

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"sync"
	"time"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// DefaultTimeout bounds a whole readiness probe.
const DefaultTimeout = 5 * time.Second

// Response is the JSON response returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency probe.
type CheckResult struct {
	Status    Status `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type dependency struct {
	check    Checker
	critical bool
}

// Handler tracks the storefront's dependencies. The document store is
// critical: while it is unreachable the service is not ready. The product
// cache and the event broker are optional and only degrade the service.
type Handler struct {
	mu      sync.RWMutex
	deps    map[string]dependency
	timeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// NewHandler creates a handler with no registered dependencies.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{deps: make(map[string]dependency), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterCritical adds a dependency whose failure reports the service down.
// Registering a name twice replaces the earlier checker.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, dependency{check: checker, critical: true})
}

// RegisterNonCritical adds a dependency whose failure reports the service
// degraded.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, dependency{check: checker})
}

func (h *Handler) register(name string, dep dependency) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deps[name] = dep
}

// LivenessHandler returns 200 while the process is running.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler probes every dependency concurrently. It answers 503 when a
// critical dependency is down and 200 otherwise.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, resp)
	}
}

// Check runs all probes and aggregates their results.
func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	deps := maps.Clone(h.deps)
	h.mu.RUnlock()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(deps))
	)
	for name, dep := range deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := probe(ctx, dep)
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	overall := StatusUp
	for _, res := range checks {
		switch {
		case res.Status == StatusUp:
		case res.Critical:
			overall = StatusDown
		case overall == StatusUp:
			overall = StatusDegraded
		}
	}
	return Response{Status: overall, Timestamp: time.Now().UTC(), Checks: checks}
}

func probe(ctx context.Context, dep dependency) CheckResult {
	start := time.Now()
	err := dep.check(ctx)
	res := CheckResult{Status: StatusUp, Critical: dep.critical, LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
	}
	return res
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
