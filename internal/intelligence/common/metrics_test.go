package common

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusModelMetrics_Success(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPrometheusModelMetrics(registry)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewPrometheusModelMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewPrometheusModelMetrics(registry)
	require.NoError(t, err)

	_, err = NewPrometheusModelMetrics(registry)
	assert.Error(t, err)
}

func TestPrometheus_RecordFit(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPrometheusModelMetrics(registry)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordFit(ctx, &FitMetricParams{ModelName: "cluster_0", Panel: "PRISM", DurationMs: 12, Iterations: 40, SupportVectors: 3, Converged: true, Success: true})
	m.RecordFit(ctx, &FitMetricParams{ModelName: "cluster_1", Panel: "PRISM", DurationMs: 8, Success: false})
	m.RecordFit(ctx, nil)

	pm := m.(*prometheusModelMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.fitTotal.WithLabelValues("cluster_0", "PRISM", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.fitTotal.WithLabelValues("cluster_1", "PRISM", "failure")))

	stats := m.GetCurrentStats()
	assert.Equal(t, int64(2), stats.TotalFits)
	assert.Equal(t, int64(1), stats.FailedFits)
	assert.InDelta(t, 10.0, stats.AvgFitLatencyMs, 1e-9)
}

func TestPrometheus_RecordBatchProcessing(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPrometheusModelMetrics(registry)
	require.NoError(t, err)

	m.RecordBatchProcessing(context.Background(), &BatchMetricParams{
		BatchName: "fit", TotalItems: 4, SuccessItems: 3, FailedItems: 1, TotalDurationMs: 50,
	})

	pm := m.(*prometheusModelMetrics)
	assert.Equal(t, 3.0, testutil.ToFloat64(pm.batchItemsTotal.WithLabelValues("fit", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.batchItemsTotal.WithLabelValues("fit", "failed")))
	assert.Equal(t, int64(1), m.GetCurrentStats().Batches)
}

func TestInMemory_RecordFit(t *testing.T) {
	m := NewInMemoryModelMetrics()
	ctx := context.Background()
	m.RecordFit(ctx, &FitMetricParams{ModelName: "a", DurationMs: 100, Success: true, Converged: false})
	m.RecordFit(ctx, &FitMetricParams{ModelName: "b", DurationMs: 300, Success: true, Converged: true})

	fits := m.Fits()
	require.Len(t, fits, 2)
	assert.Equal(t, "a", fits[0].ModelName)

	stats := m.GetCurrentStats()
	assert.Equal(t, int64(2), stats.TotalFits)
	assert.Equal(t, int64(1), stats.UnconvergedFits)
	assert.Equal(t, int64(0), stats.FailedFits)
	assert.Equal(t, 200.0, stats.AvgFitLatencyMs)
	assert.Equal(t, int64(2), m.GetFitLatencyHistogram().Count())
}

func TestNoop_Metrics(t *testing.T) {
	m := NewNoopModelMetrics()
	m.RecordFit(context.Background(), &FitMetricParams{DurationMs: 5})
	m.RecordBatchProcessing(context.Background(), &BatchMetricParams{})
	assert.Equal(t, &ModelStats{}, m.GetCurrentStats())
	assert.Equal(t, int64(0), m.GetFitLatencyHistogram().Count())
}

func TestLatencyHistogram_Percentile(t *testing.T) {
	h := newLatencyHistogram()
	assert.Equal(t, 0.0, h.Percentile(50))

	for _, v := range []float64{40, 10, 30, 20} {
		h.Observe(v)
	}
	assert.Equal(t, int64(4), h.Count())
	assert.Equal(t, 100.0, h.Sum())
	assert.Equal(t, 10.0, h.Percentile(0))
	assert.Equal(t, 40.0, h.Percentile(100))

	p50 := h.Percentile(50)
	assert.GreaterOrEqual(t, p50, 10.0)
	assert.LessOrEqual(t, p50, 40.0)
	assert.LessOrEqual(t, h.Percentile(25), h.Percentile(75))
}

//Personal.AI order the ending
