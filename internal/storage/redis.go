package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/artifactrepo/internal/config"
	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// NewRedisClient connects to Redis using the configured URL.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, defaultRedisTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
