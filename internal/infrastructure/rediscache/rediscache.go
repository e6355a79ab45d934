// Package rediscache provides a Redis-backed cache.Store for deployments
// where several console instances share one query cache. Invalidation uses a
// per-resource generation counter: entries record the generation they were
// written under, and bumping the counter marks them all stale at once.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetgrid/tms-console/internal/core/cache"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// envelope is the stored value: the payload plus the resource generation it
// was written under.
type envelope struct {
	Generation uint64          `json:"gen"`
	Data       json.RawMessage `json:"data"`
}

// Store implements cache.Store on Redis. Entries expire after maxAge, which
// bounds age-based staleness; generation mismatches cover imperative
// invalidation.
type Store struct {
	client *redis.Client
	maxAge time.Duration
}

// NewStore wraps client. A non-positive maxAge applies five minutes.
func NewStore(client *redis.Client, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &Store{client: client, maxAge: maxAge}
}

func (s *Store) Get(ctx context.Context, k cache.Key) (cache.Entry, bool, error) {
	raw, err := s.client.Get(ctx, entryKey(k)).Result()
	if err == redis.Nil {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("cache get: %w", err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return cache.Entry{}, false, fmt.Errorf("cache decode: %w", err)
	}

	gen, err := s.generation(ctx, k.Resource)
	if err != nil {
		return cache.Entry{}, false, err
	}
	return cache.Entry{Data: env.Data, Fresh: env.Generation == gen}, true, nil
}

func (s *Store) Set(ctx context.Context, k cache.Key, data []byte) error {
	gen, err := s.generation(ctx, k.Resource)
	if err != nil {
		return err
	}
	value, err := json.Marshal(envelope{Generation: gen, Data: data})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := s.client.Set(ctx, entryKey(k), value, s.maxAge).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *Store) Invalidate(ctx context.Context, resource string) error {
	if err := s.client.Incr(ctx, generationKey(resource)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (s *Store) generation(ctx context.Context, resource string) (uint64, error) {
	raw, err := s.client.Get(ctx, generationKey(resource)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	gen, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache generation parse: %w", err)
	}
	return gen, nil
}

func entryKey(k cache.Key) string {
	return "query:" + k.Canonical()
}

func generationKey(resource string) string {
	return "querygen:" + resource
}
