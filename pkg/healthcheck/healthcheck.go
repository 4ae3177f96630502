// Package healthcheck serves the liveness and readiness probes and
// aggregates dependency checks for them
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// worse reports whether s ranks below other
func (s Status) worse(other Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	return rank[s] > rank[other]
}

// Check is the outcome of one dependency check
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	Optional    bool          `json:"optional,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
}

// Response is the readiness body
type Response struct {
	Status          Status        `json:"status"`
	Version         string        `json:"version"`
	Timestamp       time.Time     `json:"timestamp"`
	Checks          []Check       `json:"checks"`
	TotalDuration   time.Duration `json:"-"`
	TotalDurationMS int64         `json:"total_duration_ms"`
}

// Checker probes one dependency
type Checker interface {
	Check(ctx context.Context) Check
}

type registration struct {
	checker  Checker
	optional bool
}

// HealthCheck runs the registered checkers concurrently and caches the
// aggregated response for a short TTL
type HealthCheck struct {
	version  string
	logger   *zap.Logger
	cacheTTL time.Duration
	timeout  time.Duration

	mu     sync.RWMutex
	checks map[string]registration
	cache  *Response
}

// Option configures a HealthCheck
type Option func(*HealthCheck)

// WithCacheTTL sets how long an aggregated response is reused. Zero
// disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(h *HealthCheck) { h.cacheTTL = ttl }
}

// WithTimeout bounds a whole check round
func WithTimeout(timeout time.Duration) Option {
	return func(h *HealthCheck) { h.timeout = timeout }
}

func New(version string, logger *zap.Logger, opts ...Option) *HealthCheck {
	h := &HealthCheck{
		version:  version,
		logger:   logger.Named("healthcheck"),
		cacheTTL: 5 * time.Second,
		timeout:  5 * time.Second,
		checks:   map[string]registration{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a required dependency: its failure makes the service unready
func (h *HealthCheck) Register(name string, checker Checker) {
	h.register(name, registration{checker: checker})
}

// RegisterOptional adds a dependency whose failure only degrades the status
func (h *HealthCheck) RegisterOptional(name string, checker Checker) {
	h.register(name, registration{checker: checker, optional: true})
}

func (h *HealthCheck) register(name string, reg registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = reg
	h.cache = nil
}

// LivenessHandler answers as long as the process serves requests
func (h *HealthCheck) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "alive",
			"version":   h.version,
			"timestamp": time.Now().UTC(),
		})
	}
}

// ReadinessHandler answers 503 only when a required check is unhealthy
func (h *HealthCheck) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := h.Check(r.Context())
		if response.Status != StatusUnhealthy {
			writeJSON(w, http.StatusOK, response)
			return
		}
		h.logger.Warn("Readiness check failed", zap.Any("checks", response.Checks))
		writeJSON(w, http.StatusServiceUnavailable, response)
	}
}

// Check runs every checker, or returns the cached response while it is fresh
func (h *HealthCheck) Check(ctx context.Context) Response {
	h.mu.RLock()
	if h.cache != nil && time.Since(h.cache.Timestamp) < h.cacheTTL {
		cached := *h.cache
		h.mu.RUnlock()
		return cached
	}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	regs := make([]registration, len(names))
	for i, name := range names {
		regs[i] = h.checks[name]
	}
	h.mu.RUnlock()

	start := time.Now()
	checks := make([]Check, len(names))

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	var g errgroup.Group
	for i := range names {
		g.Go(func() error {
			c := regs[i].checker.Check(checkCtx)
			c.Name = names[i]
			c.Optional = regs[i].optional
			c.DurationMS = c.Duration.Milliseconds()
			checks[i] = c
			return nil
		})
	}
	_ = g.Wait()

	response := Response{
		Status:    StatusHealthy,
		Version:   h.version,
		Timestamp: start,
		Checks:    checks,
	}
	for _, c := range checks {
		status := c.Status
		if c.Optional && status == StatusUnhealthy {
			status = StatusDegraded
		}
		if status.worse(response.Status) {
			response.Status = status
		}
	}
	response.TotalDuration = time.Since(start)
	response.TotalDurationMS = response.TotalDuration.Milliseconds()

	h.mu.Lock()
	h.cache = &response
	h.mu.Unlock()
	return response
}

// PingChecker adapts a ping function such as redis.Client.Ping. A failed
// ping is unhealthy and one slower than slowResponse is degraded.
type PingChecker struct {
	ping         func(ctx context.Context) error
	slowResponse time.Duration
}

func NewPingChecker(ping func(ctx context.Context) error, slowResponse time.Duration) *PingChecker {
	if slowResponse <= 0 {
		slowResponse = time.Second
	}
	return &PingChecker{ping: ping, slowResponse: slowResponse}
}

func (p *PingChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := p.ping(ctx)
	c := Check{Status: StatusHealthy, LastChecked: start, Duration: time.Since(start)}

	if err != nil {
		c.Status, c.Message = StatusUnhealthy, err.Error()
	} else if c.Duration > p.slowResponse {
		c.Status, c.Message = StatusDegraded, "slow response"
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
