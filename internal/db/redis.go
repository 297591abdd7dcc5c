package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates and returns a new Redis client.
// connString is either a redis:// URL or a host:port address.
func NewRedisClient(ctx context.Context, connString string) (*redis.Client, error) {
	opts, err := redisOptions(connString)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Ping the server to ensure the connection is established.
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

func redisOptions(connString string) (*redis.Options, error) {
	if connString == "" {
		connString = "localhost:6379"
	}
	if strings.HasPrefix(connString, "redis://") || strings.HasPrefix(connString, "rediss://") {
		opts, err := redis.ParseURL(connString)
		if err != nil {
			return nil, fmt.Errorf("invalid redis connection string: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: connString}, nil
}
