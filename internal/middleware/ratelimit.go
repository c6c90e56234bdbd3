package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"fest-backend/internal/response"
	"fest-backend/pkg/errors"
	"fest-backend/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the map size above which idle entries are pruned.
	cleanupThreshold = 500
	maxIdleAge       = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out one token bucket per key (operator or client IP).
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	r       rate.Limit
	b       int
	now     func() time.Time
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		entries: make(map[string]*limiterEntry),
		r:       r,
		b:       b,
		now:     time.Now,
	}
}

// Limiter returns the bucket for key, pruning idle buckets when the map grows.
func (k *KeyedRateLimiter) Limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if len(k.entries) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for key, e := range k.entries {
			if e.lastSeen.Before(cutoff) {
				delete(k.entries, key)
			}
		}
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.r, k.b)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit throttles front-desk traffic. Authenticated callers are keyed by
// user id so a shared venue network does not starve other desks.
func RateLimit(limiter *KeyedRateLimiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if identity, ok := IdentityFrom(r.Context()); ok {
				key = "user:" + identity.UserID
			}

			if !limiter.Limiter(key).Allow() {
				response.Error(w, r, errors.NewRateLimitError("Too many requests, slow down"), log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
