// Package redis wires the go-redis client into the application configuration.
package redis

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/elitecasino/crash-backend/pkg/config"
)

// Client wraps the go-redis client so callers depend on this package instead
// of the driver directly.
type Client struct {
	*redis.Client
}

// New creates a Redis client from cfg and verifies the connection with Ping.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Client{Client: rdb}, nil
}
