// Package idempotency replays a stored response for a repeated
// Idempotency-Key, so retried booking requests never reserve twice.
package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/barani-presidio/hotel-booking/internal/adapters/redis"
)

type Idempotency struct {
	redis *redisadapter.Idempotency
	ttl   time.Duration
}

func NewIdempotency(redis *redisadapter.Idempotency, ttl time.Duration) *Idempotency {
	return &Idempotency{redis: redis, ttl: ttl}
}

type Response struct {
	Status int
	Result []byte
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	stored, found, err := i.redis.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	return &Response{Status: stored.Status, Result: stored.Body}, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	return i.redis.Set(ctx, key, redisadapter.StoredResponse{Status: resp.Status, Body: resp.Result}, i.ttl)
}
