// README: Tariff read-through cache in Redis (JSON values with TTL).
package tariff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "tariff:%s"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: client, ttl: ttl}
}

// Get returns the cached tariff and whether it was present.
func (c *Cache) Get(ctx context.Context, destination string) (Tariff, bool, error) {
	val, err := c.redis.Get(ctx, cacheKey(destination)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Tariff{}, false, nil
	}
	if err != nil {
		return Tariff{}, false, err
	}
	var t Tariff
	if err := json.Unmarshal(val, &t); err != nil {
		return Tariff{}, false, fmt.Errorf("decode cached tariff %q: %w", destination, err)
	}
	return t, true, nil
}

func (c *Cache) Set(ctx context.Context, t Tariff) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cacheKey(t.Destination), b, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, destination string) error {
	return c.redis.Del(ctx, cacheKey(destination)).Err()
}

func cacheKey(destination string) string {
	return fmt.Sprintf(cacheKeyPrefix, destination)
}
