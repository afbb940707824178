// Package ratelimit provides per-host token-bucket rate limiting for
// outbound provider traffic.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

const (
	// DefaultRatePerSecond refills one token per second per host.
	DefaultRatePerSecond = 1
	// DefaultBurst allows short bursts of up to 3 requests per host.
	DefaultBurst = 3
)

// HostLimiter hands out one token bucket per hostname. Buckets for
// different hosts never contend with each other; only the bucket map
// itself is guarded.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	perSec  rate.Limit
	burst   int
}

// New creates a HostLimiter with the default 3-token bucket refilling
// at one token per second.
func New() *HostLimiter {
	return NewWithRate(DefaultRatePerSecond, DefaultBurst)
}

// NewWithRate creates a HostLimiter with a custom refill rate and burst.
func NewWithRate(perSecond float64, burst int) *HostLimiter {
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		perSec:  rate.Limit(perSecond),
		burst:   burst,
	}
}

// Wait blocks until the bucket for host allows a request, or the context
// is cancelled. Each successful return consumes exactly one token.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if err := l.bucket(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	return nil
}

// Allow reports whether a request to host can proceed without blocking,
// consuming a token if so. Prefer Wait for most cases.
func (l *HostLimiter) Allow(host string) bool {
	return l.bucket(host).Allow()
}

func (l *HostLimiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = rate.NewLimiter(l.perSec, l.burst)
		l.buckets[host] = b
	}
	return b
}
