// Package ratelimit spaces out requests to the same government host.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/regwatch/internal/metrics"
)

// Config holds rate limiter configuration. A non-positive RPS disables
// limiting.
type Config struct {
	RPS   float64
	Burst int
}

// Limiter hands out one token bucket per portal. "www.rbi.org.in" and
// "rbi.org.in" share a bucket since they are served by the same backend.
type Limiter struct {
	every rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	l := &Limiter{
		every:   rate.Inf,
		burst:   max(cfg.Burst, 1),
		buckets: make(map[string]*rate.Limiter),
	}
	if cfg.RPS > 0 {
		l.every = rate.Limit(cfg.RPS)
	}
	return l
}

// Wait blocks until the portal behind rawURL may be hit again.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	key := portal(rawURL)
	began := time.Now()
	if err := l.bucket(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", key, err)
	}
	if d := time.Since(began); d > time.Millisecond {
		metrics.ObserveRateLimitDelay(key, d)
	}
	return nil
}

// Hosts reports how many portals currently have a bucket.
func (l *Limiter) Hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		return b
	}
	b := rate.NewLimiter(l.every, l.burst)
	l.buckets[key] = b
	return b
}

func portal(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
