package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// RedisStore keeps each snapshot as a JSON string under "portfolio:{userID}", without TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store from a redis:// or rediss:// URL.
// The connection is established lazily; use Ping to check reachability.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Name implements Store.
func (s *RedisStore) Name() string {
	return config.BackendRedis
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, userID string) (model.Snapshot, error) {
	data, err := s.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	return decodeSnapshot(data)
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
