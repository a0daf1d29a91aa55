package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelRoute    = "route"
	ProfilingLabelMethod   = "method"
	ProfilingLabelCategory = "category"
)

// MaxLabelValueLength caps label values to keep profile series small.
const MaxLabelValueLength = 128

// highCardinalityLabels are never attached to profiles.
var highCardinalityLabels = map[string]bool{
	"request_id":  true,
	"delivery_id": true,
	"order_id":    true,
	"trace_id":    true,
}

// WithProfilingLabels runs fn with Pyroscope labels attached to ctx.
// Empty values and high-cardinality keys are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

func sanitizeLabels(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k == "" || v == "" || highCardinalityLabels[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
