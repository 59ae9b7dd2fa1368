package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency stores the response once produced for an Idempotency-Key, so a
// retried booking request replays it instead of reserving a second room.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

func idempKey(key string) string {
	return "booking:idemp:" + key
}

func (i *Idempotency) Get(ctx context.Context, key string) (*StoredResponse, bool, error) {
	val, err := i.client.Get(ctx, idempKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var resp StoredResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.client.Set(ctx, idempKey(key), data, ttl).Err()
}
