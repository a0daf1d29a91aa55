package storesync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
)

// TokenRefreshGate hands out inventory access tokens, refreshing stale ones
// with the stored refresh token and writing the result back in place.
type TokenRefreshGate struct {
	tokens     storesync.TokenRepository
	authorizer storesync.InventoryAuthorizer
	metrics    MetricsRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// TokenRefreshGateConfig holds the gate dependencies
type TokenRefreshGateConfig struct {
	Tokens     storesync.TokenRepository
	Authorizer storesync.InventoryAuthorizer
	Metrics    MetricsRecorder
	Logger     *zap.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewTokenRefreshGate creates a new TokenRefreshGate
func NewTokenRefreshGate(cfg TokenRefreshGateConfig) *TokenRefreshGate {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenRefreshGate{
		tokens:     cfg.Tokens,
		authorizer: cfg.Authorizer,
		metrics:    metricsOrNoop(cfg.Metrics),
		logger:     logger,
		now:        now,
	}
}

// AccessToken returns the store's token, refreshed first when it expires
// within storesync.TokenRefreshSkew.
func (g *TokenRefreshGate) AccessToken(ctx context.Context, store *storesync.Store) (*storesync.OAuthToken, error) {
	token, err := g.tokens.FindByStoreID(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	if !token.IsStale(g.now()) {
		return token, nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "token_gate", "refresh",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, store.ID))
	defer span.End()

	grant, err := g.authorizer.Refresh(ctx, store.RegionLocation(), token.RefreshToken)
	g.metrics.RecordTokenRefresh(ctx, err)
	if err != nil {
		telemetry.RecordError(span, err)
		g.logger.Error("Failed to refresh access token",
			zap.Int64("store_id", store.ID),
			zap.Error(err))
		return nil, err
	}

	token.Apply(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt)
	if err := g.tokens.Upsert(ctx, token); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	g.logger.Info("Access token refreshed",
		zap.Int64("store_id", store.ID),
		zap.Time("expires_at", grant.ExpiresAt))
	telemetry.SetOK(span)
	return token, nil
}
