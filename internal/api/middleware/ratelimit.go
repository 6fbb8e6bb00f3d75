package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/srq20-api/internal/domain/providers"
	"github.com/zatekoja/srq20-api/internal/infrastructure/observability"
)

const rateLimitKeyPrefix = "srq20:ratelimit:"

// RateLimiter enforces a fixed-window request limit per client. Counters are
// kept in the cache provider when one is configured and in process memory
// otherwise, or when the cache is unreachable.
type RateLimiter struct {
	cache   providers.CacheProvider
	local   *localRateLimiter
	limit   int
	window  time.Duration
	metrics *observability.Metrics
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// cache and metrics may be nil.
func NewRateLimiter(cache providers.CacheProvider, limit int, window time.Duration, metrics *observability.Metrics) *RateLimiter {
	return &RateLimiter{
		cache:   cache,
		local:   newLocalRateLimiter(),
		limit:   limit,
		window:  window,
		metrics: metrics,
	}
}

// Middleware rejects requests over the limit with 429. A limit of zero
// disables the check.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.limit <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := l.allow(r)
		if !allowed {
			observability.RecordRateLimited(r.Context(), l.metrics, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(r *http.Request) (bool, time.Duration) {
	ip := clientIP(r)

	if l.cache != nil {
		windowSeconds := int(math.Ceil(l.window.Seconds()))
		count, ttl, err := l.cache.Increment(r.Context(), rateLimitKeyPrefix+ip, windowSeconds)
		if err == nil {
			if ttl <= 0 {
				ttl = l.window
			}
			return count <= int64(l.limit), ttl
		}
		observability.LoggerFromContext(r.Context()).Warn().
			Err(err).
			Msg("Rate limit cache unavailable, falling back to local limiter")
	}

	return l.local.allow(ip, l.limit, l.window)
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
	now    func() time.Time
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
		now:    time.Now,
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := state.resetAt.Sub(now)
		if retryAfter <= 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
