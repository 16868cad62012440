// Package cache keeps hot trip reads (search results, seat maps) off the
// database. The cache is optional: a nil *TripCache is a no-op, so
// callers never branch on whether redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "saharam:trip:"

type TripCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis at addr. Empty addr or an unreachable server
// disables caching rather than failing startup.
func New(addr string, ttl time.Duration) *TripCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[CACHE] redis unreachable at %s, caching disabled: %v", addr, err)
		_ = client.Close()
		return nil
	}

	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &TripCache{client: client, ttl: ttl}
}

func (c *TripCache) Close() {
	if c == nil {
		return
	}
	_ = c.client.Close()
}

// GetSeatMap loads a cached seat map into dst.
func (c *TripCache) GetSeatMap(ctx context.Context, tripID int64, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, seatMapKey(tripID)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	return true
}

func (c *TripCache) SetSeatMap(ctx context.Context, tripID int64, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, seatMapKey(tripID), raw, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] set seat map trip=%d: %v", tripID, err)
	}
}

// Invalidate drops a trip's cached entries after any booking mutation.
func (c *TripCache) Invalidate(ctx context.Context, tripID int64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, seatMapKey(tripID)).Err(); err != nil {
		log.Printf("[CACHE] invalidate trip=%d: %v", tripID, err)
	}
}

func seatMapKey(tripID int64) string {
	return fmt.Sprintf("%sseatmap:%d", keyPrefix, tripID)
}
