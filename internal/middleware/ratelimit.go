package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter caps requests per caller over a fixed window. Counters live in
// process memory, so a multi-instance deployment gets a per-instance cap.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	count   int
	started time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go l.prune()
	return l
}

// Allow counts one request against the key's current window.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.started) >= l.window {
		l.buckets[key] = &bucket{count: 1, started: now}
		return true
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

func (l *RateLimiter) prune() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		for k, b := range l.buckets {
			if time.Since(b.started) >= l.window {
				delete(l.buckets, k)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit keys by the authenticated user when present, falling back to the
// client IP, so it belongs after AuthRequired on protected groups.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id := GetUserID(c); id != 0 {
			key = fmt.Sprintf("user:%d", id)
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
