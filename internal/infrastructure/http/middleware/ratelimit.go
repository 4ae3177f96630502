package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per authenticated user, falling back to
// the client address
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewRateLimiter starts a limiter that forgets visitors idle for longer
// than the cleanup interval
func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	perMin := cfg.RequestsPerMin
	if perMin <= 0 {
		perMin = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = perMin
	}
	idle := cfg.CleanupInterval
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMin) / 60),
		burst:    burst,
		idle:     idle,
		logger:   logger.Named("ratelimit"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if now.Sub(v.lastSeen) > rl.idle {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Limit rejects requests over budget with 429 and a Retry-After hint
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + r.RemoteAddr
		if userID, ok := security.UserIDFromContext(r.Context()); ok {
			key = "user:" + userID.String()
		}

		limiter := rl.getLimiter(key)
		if !limiter.Allow() {
			retry := time.Duration(float64(time.Second) / float64(rl.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			rl.logger.Warn("Rate limit exceeded", zap.String("key", key))
			writeError(w, r, errors.NewTooManyRequestsError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.stop)
		<-rl.done
	})
}
