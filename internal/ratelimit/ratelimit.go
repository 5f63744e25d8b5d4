// Package ratelimit throttles outbound notifications per job.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/stringdesk/stringing-service/internal/clock"
)

// Limiter decides whether an action keyed by key may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config sizes a limiter.
type Config struct {
	PerMinute int
	Burst     int
}

func (c Config) normalized() Config {
	if c.PerMinute <= 0 {
		c.PerMinute = 5
	}
	if c.Burst <= 0 {
		c.Burst = c.PerMinute
	}
	return c
}

// TokenBucket is an in-process limiter with one bucket per key.
type TokenBucket struct {
	mu     sync.Mutex
	clock  clock.Clock
	rate   float64
	burst  float64
	bucket map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket builds an in-memory limiter. A nil clock uses the system clock.
func NewTokenBucket(cfg Config, clk clock.Clock) *TokenBucket {
	cfg = cfg.normalized()
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &TokenBucket{
		clock:  clk,
		rate:   float64(cfg.PerMinute) / 60.0,
		burst:  float64(cfg.Burst),
		bucket: make(map[string]*bucket),
	}
}

func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	b, ok := l.bucket[key]
	if !ok {
		l.bucket[key] = &bucket{tokens: l.burst - 1, last: now}
		return true, nil
	}
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = minFloat(l.burst, b.tokens+elapsed*l.rate)
		b.last = now
	}
	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Unlimited never throttles. Used by dry runs.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) {
	return true, nil
}
