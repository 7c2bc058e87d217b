package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client with our configuration.
type Client struct {
	client *redis.Client
	log    *logger.Logger
}

// NewClient connects to Redis from configuration.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	if cfg.Redis.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Infow("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return &Client{client: client, log: log}, nil
}

// GetClient returns the underlying go-redis client.
func (c *Client) GetClient() *redis.Client {
	return c.client
}

// Close shuts down the connection pool.
func (c *Client) Close() error {
	return c.client.Close()
}
