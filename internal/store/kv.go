package store

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// KV is the small cache surface the stats service needs. The Redis
// implementation backs production; tests use the map-backed one.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

var _ KV = (*RedisKV)(nil)

func (s *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// MemoryKV is a process-local KV for tests and DB-less local runs.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]entry
}

type entry struct {
	value   string
	expires time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]entry{}}
}

var _ KV = (*MemoryKV)(nil)

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.values[key]
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.values[key] = entry{value: value, expires: expires}
	return nil
}
