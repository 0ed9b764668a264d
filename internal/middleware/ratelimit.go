// Package middleware provides HTTP middleware for the studio API.
package middleware

import (
	"context"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxBuckets is the maximum number of tracked IPs to prevent memory exhaustion.
const maxBuckets = 100_000

// bucketMaxAge is how long an idle bucket is kept before eviction.
const bucketMaxAge = 10 * time.Minute

// RateLimiter implements a token bucket rate limiter per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	exempt  []string
	now     func() time.Time
}

// bucket is a per-IP token bucket. Tokens accrue fractionally.
type bucket struct {
	tokens   float64
	lastFill time.Time
}

func (b *bucket) allow(now time.Time, rate, burst float64) bool {
	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens = math.Min(burst, b.tokens+elapsed*rate)
	b.lastFill = now

	if b.tokens >= 1 {
		b.tokens--

		return true
	}

	return false
}

// NewRateLimiter creates a RateLimiter with the given requests per second and
// burst size. Requests whose path starts with one of exempt bypass the limiter.
// It starts a background goroutine to evict stale buckets, which stops when ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int, exempt ...string) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(ratePerSec),
		burst:   float64(burst),
		exempt:  exempt,
		now:     time.Now,
	}
	go rl.startCleanup(ctx)

	return rl
}

// startCleanup periodically evicts stale rate-limit buckets.
func (rl *RateLimiter) startCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.lastFill) > bucketMaxAge {
			delete(rl.buckets, ip)
		}
	}
}

func (rl *RateLimiter) isExempt(path string) bool {
	for _, prefix := range rl.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Handler returns Gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		// ClientIP ignores forwarding headers because the router trusts no proxies.
		ip := c.ClientIP()
		now := rl.now()

		rl.mu.Lock()
		b, ok := rl.buckets[ip]
		if !ok {
			if len(rl.buckets) >= maxBuckets {
				rl.mu.Unlock()
				respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

				return
			}

			b = &bucket{tokens: rl.burst, lastFill: now}
			rl.buckets[ip] = b
		}

		allowed := b.allow(now, rl.rate, rl.burst)
		rl.mu.Unlock()

		if !allowed {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
