package cache

import (
	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	redisClient "github.com/brokerdesk/brokerdesk/internal/redis"
)

// CacheType represents the type of cache to use
type CacheType string

const (
	// CacheTypeInMemory represents an in-memory cache
	CacheTypeInMemory CacheType = "inmemory"

	// CacheTypeRedis represents a Redis-backed cache
	CacheTypeRedis CacheType = "redis"
)

// Initialize initializes the cache system based on the configured type.
// Redis is used when configured and reachable; otherwise the in-memory
// cache serves as the fallback.
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache system", "type", cfg.Cache.Type)

	var c Cache

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		client, err := redisClient.NewClient(cfg, log)
		if err != nil {
			log.Errorw("failed to connect to redis, falling back to in-memory cache", "error", err)
			InitializeInMemoryCache()
			c = GetInMemoryCache()
			break
		}
		InitializeRedisCache(client, log)
		c = GetRedisCache()
	case CacheTypeInMemory:
		fallthrough
	default:
		InitializeInMemoryCache()
		c = GetInMemoryCache()
	}

	log.Infow("cache system initialized", "type", cfg.Cache.Type)
	return c
}
