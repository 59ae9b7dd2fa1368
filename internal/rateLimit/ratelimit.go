package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/barani-presidio/hotel-booking/internal/adapters/redis"
)

// RateLimiter counts requests per key in fixed windows. It fails closed:
// when Redis is unreachable the request is rejected rather than letting a
// retry storm hammer the reservation path.
type RateLimiter struct {
	redis  *redisadapter.Cache
	window time.Duration
}

func NewRateLimiter(redis *redisadapter.Cache, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redis, window: window}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false
	}
	return incr.Val() <= int64(limit)
}
