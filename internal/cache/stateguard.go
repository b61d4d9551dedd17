// Package cache holds Redis-backed helpers.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateGuard remembers consumed OAuth state nonces so a state value is
// accepted at most once, even across several API instances.
type RedisStateGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisStateGuard(client *redis.Client, prefix string) *RedisStateGuard {
	if prefix == "" {
		prefix = "devdesk:oauth:state:"
	}
	return &RedisStateGuard{client: client, prefix: prefix}
}

// Consume marks nonce as used. It returns false when the nonce was already
// consumed. ttl should cover the state's remaining lifetime.
func (g *RedisStateGuard) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	if nonce == "" {
		return false, errors.New("cache: empty state nonce")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := g.client.SetNX(ctx, g.prefix+nonce, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: consuming state: %w", err)
	}
	return ok, nil
}
