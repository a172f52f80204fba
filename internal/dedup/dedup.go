// Package dedup remembers recently processed webhook deliveries. The service retries a delivery
// when the receiver is slow to answer, so the same notification may arrive more than once.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DefaultKeyPrefix namespaces the keys written to a shared Redis.
const DefaultKeyPrefix = "zadarma:delivery:"

// Store records delivery keys for a limited time.
type Store interface {
	// Seen marks key as processed for ttl and reports whether it already was.
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget removes key so that a redelivery is processed again.
	Forget(ctx context.Context, key string) error
}

// RedisStore keeps delivery keys in Redis, so that several receivers share one view.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultKeyPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	return &RedisStore{rdb: rdb, prefix: opts.Prefix}, nil
}

// Seen implements Store with SET NX.
func (s *RedisStore) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	created, err := s.rdb.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to record delivery")
	}
	return !created, nil
}

// Forget implements Store.
func (s *RedisStore) Forget(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "failed to forget delivery")
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// MemoryStore keeps delivery keys in process memory. It suits a single long-running receiver.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Seen implements Store. Expired keys are purged on each call.
func (s *MemoryStore) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, k)
		}
	}

	if _, ok := s.entries[key]; ok {
		return true, nil
	}
	s.entries[key] = now.Add(ttl)
	return false, nil
}

// Forget implements Store.
func (s *MemoryStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of live keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
