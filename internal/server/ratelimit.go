package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the sustained number of requests per second
	// allowed from one client IP.
	DefaultRateLimit = 10

	// DefaultRateBurst is the burst allowed from one client IP.
	DefaultRateBurst = 20

	rateLimiterIdleTTL = 10 * time.Minute
	rateLimiterCleanup = 5 * time.Minute
)

// RateLimiter implements a token bucket rate limiter per client IP.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*ipLimiter
	limit       rate.Limit
	burst       int
	trustProxy  bool
	now         func() time.Time
	lastCleanup time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing perSecond requests per IP
// with the given burst. trustProxy makes X-Forwarded-For and X-Real-IP
// authoritative; enable it only behind a trusted proxy.
func NewRateLimiter(perSecond float64, burst int, trustProxy bool) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*ipLimiter),
		limit:       rate.Limit(perSecond),
		burst:       burst,
		trustProxy:  trustProxy,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Allow checks if a request from the given IP should be allowed
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) >= rateLimiterCleanup {
		for key, l := range rl.limiters {
			if now.Sub(l.lastSeen) > rateLimiterIdleTTL {
				delete(rl.limiters, key)
			}
		}
		rl.lastCleanup = now
	}

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. A nil limiter passes every request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r, rl.trustProxy)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP address from the request.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
