package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the session snapshot in Redis under a key prefix so
// several clients can share one instance. A zero TTL keeps entries until
// logout removes them.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore and verifies connectivity.
func NewRedisStore(ctx context.Context, client *redis.Client, prefix string, ttl time.Duration) (*RedisStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session: redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key, applying the configured TTL when set.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: redis del %s: %w", key, err)
	}
	return nil
}

// Clear removes every key under the store's prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("session: redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("session: redis clear: %w", err)
	}
	return nil
}
