package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore handles Redis operations: per-conversation exchange locks and
// rate-limit state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for middleware that manages its own
// keys (rate limiting).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// exchangeLockKey returns the key guarding a conversation's in-flight
// exchange.
func exchangeLockKey(conversationID string) string {
	return fmt.Sprintf("exchange:%s:lock", conversationID)
}

// AcquireExchange takes the in-flight lock for a conversation. Exactly one
// exchange may stream per conversation at a time; the TTL bounds the lock
// lifetime should a server die mid-stream.
func (s *RedisStore) AcquireExchange(ctx context.Context, conversationID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, exchangeLockKey(conversationID), "1", ttl).Result()
}

// ReleaseExchange releases a conversation's in-flight lock.
func (s *RedisStore) ReleaseExchange(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, exchangeLockKey(conversationID)).Err()
}
