package decompose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/chazu/splinter/pkg/kernel/brep"
)

// The global providers bind once per process, so every telemetry
// assertion lives in this one test.
func TestRunTelemetry(t *testing.T) {
	ctx := context.Background()

	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	defer tp.Shutdown(ctx)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(ctx)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	d := newDecomposer()
	res := d.Run(ctx, brep.NewCompound(unitBox(0), unitBox(3)), optionsAt(LevelShape))
	require.Len(t, res.Components, 2)

	var run sdktrace.ReadOnlySpan
	strategies := 0
	for _, s := range spanRecorder.Ended() {
		switch s.Name() {
		case "Decomposer.Run":
			run = s
		case "Decomposer.Strategy":
			strategies++
		}
	}
	require.NotNil(t, run, "run span should be recorded")
	assert.Contains(t, run.Attributes(), attribute.String("decompose.strategy", "freecad-like"))
	assert.Contains(t, run.Attributes(), attribute.Int("decompose.components", 2))
	assert.Equal(t, 1, strategies)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
			if m.Name == "decompose_runs_total" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				var total int64
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				assert.GreaterOrEqual(t, total, int64(1))
			}
		}
	}
	assert.True(t, names["decompose_runs_total"])
	assert.True(t, names["decompose_duration_seconds"])
	assert.True(t, names["decompose_strategy_attempts_total"])
}
