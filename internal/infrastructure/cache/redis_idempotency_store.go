package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/config"
)

// DefaultKeyPrefix namespaces delivery keys in a shared Redis.
const DefaultKeyPrefix = "storesync:delivery:"

// RedisIdempotencyStore keeps delivery keys in Redis so every replica sees
// the same set.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore connects to Redis and verifies the connection.
func NewRedisIdempotencyStore(ctx context.Context, cfg config.RedisConfig, keyPrefix string) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return NewRedisIdempotencyStoreWithClient(client, keyPrefix), nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client.
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed uses SET NX so concurrent deliveries of the same key race
// safely; exactly one caller sees true.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery %s as processed: %w", key, err)
	}
	return ok, nil
}

// Release deletes key.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release delivery %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
