// Package storesync holds the application services of the store sync
// bridge: stock reconciliation for inventory webhooks, order lifecycle for
// storefront webhooks, token refresh and OAuth onboarding.
package storesync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/storesync/backend/internal/domain/storesync"
)

// Archive sources
const (
	SourceInventory  = "inventory"
	SourceStorefront = "storefront"
)

// ArchivedPayload is a raw webhook body kept for later inspection.
type ArchivedPayload struct {
	Source     string
	Category   string
	StoreRef   string
	DeliveryID string
	Body       []byte
	ReceivedAt time.Time
}

// PayloadArchive stores raw webhook bodies. Archive returns the object key.
type PayloadArchive interface {
	Archive(ctx context.Context, payload ArchivedPayload) (string, error)
}

// MetricsRecorder receives sync counters. telemetry.SyncMetrics implements it.
type MetricsRecorder interface {
	RecordWebhook(ctx context.Context, category, outcome string)
	RecordAdjustment(ctx context.Context, category, outcome string, n int)
	RecordOrderEvent(ctx context.Context, eventType, action string)
	RecordTokenRefresh(ctx context.Context, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordWebhook(context.Context, string, string) {}
func (noopMetrics) RecordAdjustment(context.Context, string, string, int) {}
func (noopMetrics) RecordOrderEvent(context.Context, string, string) {}
func (noopMetrics) RecordTokenRefresh(context.Context, error) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// AccessTokenProvider returns a usable access token for a store.
// TokenRefreshGate implements it.
type AccessTokenProvider interface {
	AccessToken(ctx context.Context, store *storesync.Store) (*storesync.OAuthToken, error)
}

// DeliveryKey builds the dedup key of an inventory webhook delivery. The
// delivery id header is used when present, the body digest otherwise.
func DeliveryKey(category storesync.WebhookCategory, deliveryID string, body []byte) string {
	if deliveryID != "" {
		return string(category) + ":" + deliveryID
	}
	sum := sha256.Sum256(body)
	return string(category) + ":sha256:" + hex.EncodeToString(sum[:])
}

// EventKey builds the dedup key of a storefront event.
func EventKey(eventID string) string {
	return SourceStorefront + ":" + eventID
}
