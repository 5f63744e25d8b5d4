package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stringdesk/stringing-service/internal/clock"
)

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewTokenBucket(Config{PerMinute: 5}, clk)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "job-1")
		if err != nil || !ok {
			t.Fatalf("send %d rejected", i+1)
		}
	}
	if ok, _ := limiter.Allow(ctx, "job-1"); ok {
		t.Fatal("sixth send within a minute should be rejected")
	}
	if ok, _ := limiter.Allow(ctx, "job-2"); !ok {
		t.Fatal("keys must not share buckets")
	}

	clk.Advance(12 * time.Second)
	if ok, _ := limiter.Allow(ctx, "job-1"); !ok {
		t.Fatal("a token should refill after 12s at 5/min")
	}
	if ok, _ := limiter.Allow(ctx, "job-1"); ok {
		t.Fatal("only one token should have refilled")
	}
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	for i := 0; i < 100; i++ {
		if ok, _ := l.Allow(context.Background(), "k"); !ok {
			t.Fatal("unlimited limiter rejected")
		}
	}
}
