// Package ratelimit throttles abuse-prone endpoints (login, pledging) per
// client with token buckets.
package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"bloodlink/pkg/requestcontext"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. The key is the authenticated user
// when present, otherwise the client IP.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a limiter allowing perMinute requests per key with the given burst.
func New(perMinute, burst int, logger *slog.Logger) *Limiter {
	return &Limiter{
		limiters: make(map[string]*entry),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		logger:   logger,
		now:      time.Now,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Sweep drops buckets idle for longer than the idle TTL.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for k, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, k)
			removed++
		}
	}
	return removed
}

// Handler is the middleware.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := "ip:" + requestcontext.ClientIP(ctx)
		if actor := requestcontext.Actor(ctx); !actor.IsAnonymous() {
			key = "user:" + actor.UserID.String()
		}

		if !l.get(key).Allow() {
			l.logger.WarnContext(ctx, "rate limit exceeded",
				"key", key,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			retry := time.Duration(float64(time.Second) / float64(l.rate))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
