package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	meter := mp.Meter(MeterName)
	assert.NotNil(t, meter)

	// Instruments on the no-op meter must still be usable.
	m, err := NewSyncMetrics(meter)
	require.NoError(t, err)
	assert.NotPanics(t, func() { m.RecordWebhook(context.Background(), "sales", "processed") })
	assert.NoError(t, mp.Shutdown(context.Background()))
}
