package prometheus

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	cfg := CollectorConfig{
		Namespace:            "test",
		Subsystem:            "unit",
		EnableGoMetrics:      false,
		EnableProcessMetrics: false,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func gatherFamilies(t *testing.T, collector MetricsCollector) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := collector.Gatherer().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestNewMetricsCollector_ValidConfig(t *testing.T) {
	c := newTestCollector(t)
	assert.NotNil(t, c)
	assert.NotNil(t, c.Registerer())
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	cfg := CollectorConfig{
		Subsystem: "unit",
	}
	_, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithGoMetrics(t *testing.T) {
	cfg := CollectorConfig{
		Namespace:       "test",
		EnableGoMetrics: true,
	}
	c, err := NewMetricsCollector(cfg, nil)
	require.NoError(t, err)
	assert.Contains(t, gatherFamilies(t, c), "go_goroutines")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("runs", "Runs", "panel")
	counter.WithLabelValues("PRISM").Add(5)

	f := gatherFamilies(t, c)["test_unit_runs"]
	require.NotNil(t, f)
	require.Len(t, f.GetMetric(), 1)
	assert.Equal(t, "PRISM", f.GetMetric()[0].GetLabel()[0].GetValue())
	assert.Equal(t, 5.0, f.GetMetric()[0].GetCounter().GetValue())
}

func TestRegisterCounter_Duplicate(t *testing.T) {
	c := newTestCollector(t)
	c1 := c.RegisterCounter("dup_counter", "help")
	c2 := c.RegisterCounter("dup_counter", "help")

	c1.WithLabelValues().Inc()
	c2.WithLabelValues().Inc()

	f := gatherFamilies(t, c)["test_unit_dup_counter"]
	require.NotNil(t, f)
	assert.Equal(t, 2.0, f.GetMetric()[0].GetCounter().GetValue())
}

func TestRegisterGauge_Success(t *testing.T) {
	c := newTestCollector(t)
	gauge := c.RegisterGauge("clusters", "Clusters")
	gauge.WithLabelValues().Set(10)
	gauge.WithLabelValues().Dec()

	f := gatherFamilies(t, c)["test_unit_clusters"]
	require.NotNil(t, f)
	assert.Equal(t, 9.0, f.GetMetric()[0].GetGauge().GetValue())
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("latency", "Latency", nil)
	hist.WithLabelValues().Observe(0.1)

	f := gatherFamilies(t, c)["test_unit_latency"]
	require.NotNil(t, f)
	h := f.GetMetric()[0].GetHistogram()
	assert.Len(t, h.GetBucket(), len(DefaultStageDurationBuckets))
	assert.Equal(t, uint64(1), h.GetSampleCount())
}

func TestTimer_MeasuresDuration(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timer_test", "Timer test", nil)
	timer := NewTimer(hist.WithLabelValues())
	time.Sleep(10 * time.Millisecond)
	d := timer.ObserveDuration()
	assert.GreaterOrEqual(t, d, 10*time.Millisecond)

	f := gatherFamilies(t, c)["test_unit_timer_test"]
	require.NotNil(t, f)
	assert.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_metric", "help", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()

	f := gatherFamilies(t, c)["test_unit_concurrent_metric"]
	require.NotNil(t, f)
	assert.Equal(t, 50.0, f.GetMetric()[0].GetCounter().GetValue())
}

func TestNoopCounter_NoError(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()

	gauge := c.RegisterGauge("conflict", "help")
	gauge.WithLabelValues().Set(10)

	f := gatherFamilies(t, c)["test_unit_conflict"]
	require.NotNil(t, f)
	assert.Equal(t, dto.MetricType_COUNTER, f.GetType())
}

func TestMustRegister_CustomCollector(t *testing.T) {
	c := newTestCollector(t)
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: "custom_collector"})
	c.MustRegister(pc)
	pc.Inc()

	assert.Contains(t, gatherFamilies(t, c), "custom_collector")
}

func TestUnregister_Success(t *testing.T) {
	c := newTestCollector(t)
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: "to_unregister"})
	c.MustRegister(pc)

	assert.True(t, c.Unregister(pc))
	assert.NotContains(t, gatherFamilies(t, c), "to_unregister")
}

//Personal.AI order the ending
