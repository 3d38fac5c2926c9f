// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the per-caller token-bucket limiter. Buckets live in
// process memory and are swept once they sit idle for longer than the idle
// window. Replays flagged by IdempotencyValidator skip the limiter.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultIdleWindow = 10 * time.Minute
	sweepEvery        = 5000 // lookups between idle sweeps
)

// keyFunc maps a request to its bucket key.
type keyFunc func(*gin.Context) string

// KeyByClientIP keys buckets by client address ("ip:203.0.113.7"). The
// catalog has no accounts, so the address is the only per-caller key.
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter hands out one rate.Limiter per key. Safe for concurrent use.
type RateLimiter struct {
	limit rate.Limit
	burst int
	keyFn keyFunc
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups int
}

// NewRateLimiter builds a limiter refilling rps tokens per second up to
// burst. A burst below 1 is raised to 1.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		keyFn:   keyFn,
		idle:    defaultIdleWindow,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Len reports how many buckets are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// limiterFor returns the bucket for key. Every sweepEvery lookups, idle
// buckets are dropped first, so a stale bucket for key itself is replaced
// by a fresh one.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.lookups++; rl.lookups >= sweepEvery {
		rl.lookups = 0
		for k, b := range rl.buckets {
			if now.Sub(b.seen) >= rl.idle {
				delete(rl.buckets, k)
			}
		}
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}

// retryAfter is the whole number of seconds until lim has a token again,
// never less than 1. A limiter that never refills also answers 1. The probe
// reservation is handed back.
func retryAfter(lim *rate.Limiter, now time.Time) int {
	if lim.Limit() <= 0 {
		return 1
	}
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return 1
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	if wait == rate.InfDuration {
		return 1
	}
	return max(1, int(math.Ceil(wait.Seconds())))
}

// Handler enforces the limit. Rejected requests get 429 with the error
// envelope and a Retry-After header.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		lim := rl.limiterFor(rl.keyFn(c))
		now := rl.now()
		if lim.AllowN(now, 1) {
			c.Next()
			return
		}

		httpRateLimited.WithLabelValues(routeLabel(c)).Inc()
		c.Header("Retry-After", strconv.Itoa(retryAfter(lim, now)))
		abortError(c, http.StatusTooManyRequests, MsgRateLimited)
	}
}
