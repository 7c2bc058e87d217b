package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/logger"
	redisClient "github.com/brokerdesk/brokerdesk/internal/redis"
	"github.com/redis/go-redis/v9"
)

const (
	// ScanCount determines how many keys to scan at once when using SCAN
	ScanCount = 100
)

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// Redis cache instance
var redisCache *RedisCache

// NewRedisCache creates a new Redis cache
func NewRedisCache(client *redisClient.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client: client.GetClient(),
		log:    log,
	}
}

// InitializeRedisCache initializes the global Redis cache instance
func InitializeRedisCache(client *redisClient.Client, log *logger.Logger) {
	if redisCache == nil {
		redisCache = NewRedisCache(client, log)
	}
}

// GetRedisCache returns the global Redis cache instance
func GetRedisCache() *RedisCache {
	return redisCache
}

// Set stores a value as JSON with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	span := StartCacheSpan(ctx, "redis", "set", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Errorw("failed to marshal cache value", "key", key, "error", err)
		return
	}

	if ttl <= 0 {
		ttl = DefaultExpiration
	}

	if err := c.client.Set(ctx, key, string(payload), ttl).Err(); err != nil {
		c.log.Errorw("failed to set cache key", "key", key, "error", err)
	}
}

// Get retrieves the JSON string stored for key.
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := StartCacheSpan(ctx, "redis", "get", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Errorw("failed to get cache key", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	span := StartCacheSpan(ctx, "redis", "delete", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Errorw("failed to delete cache key", "key", key, "error", err)
	}
}

// DeleteByPrefix removes all keys matching prefix using SCAN.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	span := StartCacheSpan(ctx, "redis", "delete_by_prefix", map[string]interface{}{"prefix": prefix})
	defer FinishSpan(span)

	iter := c.client.Scan(ctx, 0, prefix+"*", ScanCount).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Errorw("failed to delete cache key", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Errorw("failed to scan cache keys", "prefix", prefix, "error", err)
	}
}
