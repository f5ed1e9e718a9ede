package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is a JSON cache with prefix invalidation and a best-effort lock.
type Store interface {
	// GetJSON decodes the cached value into out. found is false on a miss.
	GetJSON(ctx context.Context, key string, out any) (found bool, err error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	// TryLock acquires key for ttl unless someone else holds it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Close() error
}

// ─── Memory ───

// MemoryStore keeps encoded values in a TTLCache. Used when no Redis is configured.
type MemoryStore struct {
	c *TTLCache[string, []byte]
}

// NewMemoryStore creates a process-local store.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{c: New[string, []byte](defaultTTL, time.Minute)}
}

func (m *MemoryStore) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if ttl <= 0 {
		m.c.Set(key, b)
		return nil
	}
	m.c.SetWithTTL(key, b, ttl)
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.c.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
	return nil
}

func (m *MemoryStore) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return m.c.SetIfAbsent("lock:"+key, []byte{1}, ttl), nil
}

func (m *MemoryStore) Close() error {
	m.c.Close()
	return nil
}

// ─── Redis ───

// RedisStore caches in Redis. Connection errors are logged once and the
// caller falls back to computing the value.
type RedisStore struct {
	client *redis.Client
	warned atomic.Bool
}

// NewRedisStore connects and pings. The caller decides what to do on error
// (workdesk falls back to a MemoryStore).
func NewRedisStore(ctx context.Context, addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) warnOnce(err error) {
	if r.warned.CompareAndSwap(false, true) {
		log.Warn().Str("component", "cache").Err(err).Msg("redis error, serving uncached")
	}
}

func (r *RedisStore) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnOnce(err)
		return err
	}
	return nil
}

func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.warnOnce(err)
		}
	}
	return iter.Err()
}

func (r *RedisStore) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, "lock:"+key, "1", ttl).Result()
	if err != nil {
		r.warnOnce(err)
		return false, err
	}
	return ok, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
