// Package cache is a read-through cache over Redis. Keys are always scoped
// to the requesting user so cached payloads never cross users.
package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Key prefixes for the cached reads
const (
	CollectList   = "collect_list"
	CollectDetail = "collect_detail"
	PaymentList   = "payment_list"
	PaymentDetail = "payment_detail"
)

// DefaultTTL is how long a cached read lives; it bounds staleness
const DefaultTTL = 15 * time.Minute

// Cache wraps a Redis client with a fixed TTL. A nil *Cache or a Cache
// without a client always computes.
type Cache struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Time to live for every entry
}

// New creates a cache; a non-positive ttl falls back to DefaultTTL
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// MakeKey composes prefix, prefix_userID or prefix_objectID_userID.
// A zero id means the identifier was not supplied.
func MakeKey(prefix string, userID, objectID uint) string {
	switch {
	case objectID != 0:
		return fmt.Sprintf("%s_%d_%d", prefix, objectID, userID)
	case userID != 0:
		return fmt.Sprintf("%s_%d", prefix, userID)
	}
	return prefix
}

// ObjectPrefix is the common prefix of every user's detail key for objectID
func ObjectPrefix(prefix string, objectID uint) string {
	return fmt.Sprintf("%s_%d_", prefix, objectID)
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// set stores a value in Redis with the cache TTL
func (c *Cache) set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// GetOrCompute returns the cached value for key or, on a miss, the result
// of compute, which is then stored. Compute errors are returned and not
// cached. Redis failures are logged and the value is computed instead.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, compute func() (T, error)) (T, error) {
	if c.enabled() {
		var cached T
		found, err := c.get(ctx, key, &cached)
		if err == nil && found {
			return cached, nil // Cache hit
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Cache read failed")
		}
	}
	value, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	if c.enabled() {
		if err := c.set(ctx, key, value); err != nil {
			logrus.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Cache write failed")
		}
	}
	return value, nil
}

// Invalidate deletes the named keys
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"keys":  keys,
			"error": err.Error(),
		}).Warn("Cache invalidation failed")
		return err
	}
	return nil
}

// InvalidatePrefix deletes every key starting with prefix
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if !c.enabled() {
		return nil
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"prefix": prefix,
			"error":  err.Error(),
		}).Warn("Cache scan failed")
		return err
	}
	return c.Invalidate(ctx, keys...)
}
