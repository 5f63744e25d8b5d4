package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow is a fixed one-minute window limiter shared by every instance
// pointing at the same Redis.
type RedisWindow struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisWindow allows Burst actions per key per minute (PerMinute when Burst is unset).
func NewRedisWindow(client *redis.Client, prefix string, cfg Config) *RedisWindow {
	cfg = cfg.normalized()
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisWindow{client: client, prefix: prefix, limit: int64(cfg.Burst), window: time.Minute}
}

func (l *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= l.limit, nil
}
