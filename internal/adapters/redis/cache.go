package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func availabilityKey(hotelID, checkIn, checkOut string) string {
	return "avail:" + hotelID + ":" + checkIn + ":" + checkOut
}

// GetAvailability returns a cached free-room count, or found=false on miss.
func (c *Cache) GetAvailability(ctx context.Context, hotelID, checkIn, checkOut string) (int, bool, error) {
	val, err := c.client.Get(ctx, availabilityKey(hotelID, checkIn, checkOut)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Cache) SetAvailability(ctx context.Context, hotelID, checkIn, checkOut string, available int, ttl time.Duration) error {
	return c.client.Set(ctx, availabilityKey(hotelID, checkIn, checkOut), strconv.Itoa(available), ttl).Err()
}

// InvalidateHotel drops every cached availability entry for the hotel, after
// a booking or cancellation changes its ledger.
func (c *Cache) InvalidateHotel(ctx context.Context, hotelID string) error {
	iter := c.client.Scan(ctx, 0, "avail:"+hotelID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
