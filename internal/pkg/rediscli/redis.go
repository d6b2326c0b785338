package rediscli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewRedisClient creates the lock store client and pings it once
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.GetRedisAddr(), err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until it succeeds, attempts run out or ctx is done
func WaitForRedis(ctx context.Context, cfg *config.Config, log *logger.Logger, attempts int, retryDelay time.Duration) (*redis.Client, error) {
	log = log.With("addr", cfg.GetRedisAddr())

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var client *redis.Client
		if client, err = NewRedisClient(ctx, cfg); err == nil {
			return client, nil
		}
		if attempt == attempts {
			break
		}

		log.Warnf("Redis not ready (attempt %d/%d), retrying in %s: %v", attempt, attempts, retryDelay, err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for Redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", attempts, err)
}
