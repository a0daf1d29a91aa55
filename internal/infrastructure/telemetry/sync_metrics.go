package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for the sync instruments.
const MeterName = "storesync"

// SyncMetrics records webhook handling, stock adjustments, order lifecycle
// actions, outbound API latency and token refreshes.
type SyncMetrics struct {
	webhooks      *Counter
	adjustments   *Counter
	orderEvents   *Counter
	tokenRefresh  *Counter
	remoteLatency *Histogram
}

// NewSyncMetrics creates the instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	webhooks, err := NewCounter(meter, "storesync_webhooks_received_total",
		"Inventory webhooks received, by category and outcome", "{delivery}")
	if err != nil {
		return nil, err
	}
	adjustments, err := NewCounter(meter, "storesync_stock_adjustments_total",
		"Storefront stock adjustments, by category and outcome", "{adjustment}")
	if err != nil {
		return nil, err
	}
	orderEvents, err := NewCounter(meter, "storesync_order_events_total",
		"Storefront order events, by event type and action taken", "{event}")
	if err != nil {
		return nil, err
	}
	tokenRefresh, err := NewCounter(meter, "storesync_token_refresh_total",
		"Inventory access token refreshes, by outcome", "{refresh}")
	if err != nil {
		return nil, err
	}
	remoteLatency, err := NewHistogram(meter, HistogramOpts{
		Name:        "storesync_remote_call_duration_seconds",
		Description: "Latency of calls to the inventory and storefront APIs",
		Unit:        "s",
		Boundaries:  RemoteCallBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		webhooks:      webhooks,
		adjustments:   adjustments,
		orderEvents:   orderEvents,
		tokenRefresh:  tokenRefresh,
		remoteLatency: remoteLatency,
	}, nil
}

// RecordWebhook counts one inventory webhook delivery.
func (m *SyncMetrics) RecordWebhook(ctx context.Context, category, outcome string) {
	m.webhooks.Inc(ctx, AttrCategory.String(category), AttrOutcome.String(outcome))
}

// RecordAdjustment counts n stock adjustments with the same outcome.
func (m *SyncMetrics) RecordAdjustment(ctx context.Context, category, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.adjustments.Add(ctx, int64(n), AttrCategory.String(category), AttrOutcome.String(outcome))
}

// RecordOrderEvent counts one storefront order event and the action taken.
func (m *SyncMetrics) RecordOrderEvent(ctx context.Context, eventType, action string) {
	m.orderEvents.Inc(ctx, AttrEventType.String(eventType), AttrAction.String(action))
}

// RecordTokenRefresh counts one refresh attempt.
func (m *SyncMetrics) RecordTokenRefresh(ctx context.Context, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.tokenRefresh.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordRemoteCall records the latency of one outbound call.
func (m *SyncMetrics) RecordRemoteCall(ctx context.Context, service, operation string, d time.Duration, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "failure"
	}
	m.remoteLatency.RecordDuration(ctx, d,
		AttrService.String(service),
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
	)
}
