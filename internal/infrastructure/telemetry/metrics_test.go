package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("connector"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewExportMetrics_NilMeter(t *testing.T) {
	_, err := NewExportMetrics(nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestExportMetrics_Counts(t *testing.T) {
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	metrics, err := NewExportMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	metrics.OrderExported(ctx)
	metrics.OrderExported(ctx)
	metrics.OrderFailed(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := collectSums(t, rm)
	assert.Equal(t, int64(2), sums["connector_orders_exported_total"])
	assert.Equal(t, int64(1), sums["connector_orders_export_failed_total"])
}

// collectSums flattens collected counter data into name -> total
func collectSums(t *testing.T, rm metricdata.ResourceMetrics) map[string]int64 {
	t.Helper()

	sums := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, point := range sum.DataPoints {
				sums[m.Name] += point.Value
			}
		}
	}
	return sums
}
