package store

import (
	"context"
	"sync"
	"time"
)

// ExchangeLocker enforces the one-in-flight-exchange-per-conversation rule
// on the server side. RedisStore provides the multi-instance implementation;
// MemoryLocker covers single-instance development setups.
type ExchangeLocker interface {
	Acquire(ctx context.Context, conversationID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, conversationID string) error
}

// RedisExchangeLocker adapts RedisStore to ExchangeLocker.
type RedisExchangeLocker struct {
	Redis *RedisStore
}

func (l *RedisExchangeLocker) Acquire(ctx context.Context, conversationID string, ttl time.Duration) (bool, error) {
	return l.Redis.AcquireExchange(ctx, conversationID, ttl)
}

func (l *RedisExchangeLocker) Release(ctx context.Context, conversationID string) error {
	return l.Redis.ReleaseExchange(ctx, conversationID)
}

// MemoryLocker is an in-process ExchangeLocker.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time // expiry per conversation
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]time.Time)}
}

func (l *MemoryLocker) Acquire(_ context.Context, conversationID string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, held := l.locks[conversationID]; held && now.Before(expiry) {
		return false, nil
	}
	l.locks[conversationID] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, conversationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, conversationID)
	return nil
}
