package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionKeyPrefix = "session:"

// RedisSessionStore persists sessions to Redis, allowing multiple API
// replicas to share authentication state. Redis expires the keys itself, so
// no purge pass is needed.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore opens a Redis-backed session store using the provided
// URL (redis://...).
func NewRedisSessionStore(rawURL string) (*RedisSessionStore, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("redis session url required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis session url: %w", err)
	}
	return &RedisSessionStore{client: redis.NewClient(opts)}, nil
}

// Close releases the Redis client resources.
func (s *RedisSessionStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Save stores the token with a TTL matching its expiry.
func (s *RedisSessionStore) Save(token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(context.Background(), redisSessionKeyPrefix+token, expiresAt.UTC().Format(time.RFC3339Nano), ttl).Err()
}

// Get fetches the expiry for the provided token.
func (s *RedisSessionStore) Get(token string) (time.Time, bool, error) {
	value, err := s.client.Get(context.Background(), redisSessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse session expiry: %w", err)
	}
	return expiresAt, true, nil
}

// Delete removes the session token.
func (s *RedisSessionStore) Delete(token string) error {
	return s.client.Del(context.Background(), redisSessionKeyPrefix+token).Err()
}

// Ping verifies Redis connectivity.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
