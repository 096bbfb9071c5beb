// Package cache keeps a short-lived Redis snapshot of ticket availability
// for the public catalogue. The database stays authoritative: the booking
// transaction never consults the cache, it only invalidates it.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const availabilityKeyPrefix = "ticket_availability:"

type AvailabilityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{Client: client, TTL: ttl}
}

func key(ticketID int64) string {
	return availabilityKeyPrefix + strconv.FormatInt(ticketID, 10)
}

// Get returns the cached availability and whether it was present. A nil
// client behaves as a permanent miss.
func (c *AvailabilityCache) Get(ctx context.Context, ticketID int64) (int, bool, error) {
	if c == nil || c.Client == nil {
		return 0, false, nil
	}
	val, err := c.Client.Get(ctx, key(ticketID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("availability cache get: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, ticketID int64, availability int) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Set(ctx, key(ticketID), strconv.Itoa(availability), c.TTL).Err()
}

// Invalidate drops cached entries after a booking mutates availability.
func (c *AvailabilityCache) Invalidate(ctx context.Context, ticketIDs ...int64) error {
	if c == nil || c.Client == nil || len(ticketIDs) == 0 {
		return nil
	}
	keys := make([]string, len(ticketIDs))
	for i, id := range ticketIDs {
		keys[i] = key(id)
	}
	return c.Client.Del(ctx, keys...).Err()
}
