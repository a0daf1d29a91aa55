package cache

import (
	"context"
	"fmt"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory builds the store selected by configuration.
type IdempotencyStoreFactory struct {
	idempotency           config.IdempotencyConfig
	redis                 config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption configures the factory.
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory logger.
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory store. Defaults to true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a factory.
func NewIdempotencyStoreFactory(idem config.IdempotencyConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		idempotency:           idem,
		redis:                 redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store, or nil when deduplication is
// disabled.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.idempotency.Enabled {
		f.logger.Info("delivery deduplication disabled")
		return nil, nil
	}

	switch f.idempotency.Backend {
	case config.IdempotencyBackendRedis:
		store, err := NewRedisIdempotencyStore(ctx, f.redis, f.idempotency.KeyPrefix)
		if err == nil {
			f.logger.Info("using Redis idempotency store", zap.String("addr", f.redis.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for deduplication but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
			"replicas will not share delivery keys",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(), nil
	default:
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}
}
