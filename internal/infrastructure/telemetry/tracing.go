package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for application spans.
const TracerName = "storesync"

// Span attribute keys used by the sync services.
const (
	SpanAttrStoreID         = "store.id"
	SpanAttrCategory        = "webhook.category"
	SpanAttrDeliveryID      = "webhook.delivery_id"
	SpanAttrItemCount       = "webhook.item_count"
	SpanAttrInventoryItemID = "inventory.item_id"
	SpanAttrStorefrontItem  = "storefront.product_id"
	SpanAttrQuantity        = "quantity"
	SpanAttrEventType       = "storefront.event_type"
	SpanAttrOrderID         = "storefront.order_id"
	SpanAttrSalesOrderID    = "inventory.salesorder_id"
)

// SpanOption configures StartSpan.
type SpanOption func(*spanOptions)

type spanOptions struct {
	attributes []attribute.KeyValue
	kind       trace.SpanKind
}

// WithAttribute adds an attribute at span start.
func WithAttribute(key string, value any) SpanOption {
	return func(o *spanOptions) {
		o.attributes = append(o.attributes, toAttribute(key, value))
	}
}

// WithSpanKind sets the span kind. The default is internal.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(o *spanOptions) {
		o.kind = kind
	}
}

// StartSpan starts a span on the global provider. The caller ends it.
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	o := &spanOptions{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(o)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(o.kind)}
	if len(o.attributes) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(o.attributes...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, startOpts...)
}

// StartServiceSpan starts a span named "{service}.{method}".
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, method), opts...)
}

// SetAttributes adds alternating key/value pairs to span. Non-string keys
// are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	span.SetAttributes(pairs(keyValues)...)
}

// AddEvent records a named event with alternating key/value pairs.
func AddEvent(span trace.Span, name string, keyValues ...any) {
	span.AddEvent(name, trace.WithAttributes(pairs(keyValues)...))
}

// RecordError marks span as failed. A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks span as successful.
func SetOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

func pairs(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
