package common

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/stat"
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// ModelMetrics is the telemetry API of the modelling layer.  The batch
// runner reports every batch through it and the regression engine reports
// every fit, so the backing implementation (Prometheus, in-memory, noop) can
// be swapped without touching modelling code.
type ModelMetrics interface {
	// RecordFit records one model fit.
	RecordFit(ctx context.Context, params *FitMetricParams)

	// RecordBatchProcessing records one batch run.
	RecordBatchProcessing(ctx context.Context, params *BatchMetricParams)

	// GetFitLatencyHistogram returns the fit latency histogram.
	GetFitLatencyHistogram() LatencyHistogram

	// GetCurrentStats returns a point-in-time statistics snapshot.
	GetCurrentStats() *ModelStats
}

// LatencyHistogram provides percentile-based latency observation.
type LatencyHistogram interface {
	// Observe records a latency sample in milliseconds.
	Observe(durationMs float64)

	// Percentile returns the value at the given percentile (0–100).
	Percentile(p float64) float64

	// Count returns the total number of observed samples.
	Count() int64

	// Sum returns the sum of all observed values.
	Sum() float64
}

// ---------------------------------------------------------------------------
// Parameter structs
// ---------------------------------------------------------------------------

// FitMetricParams carries the data for one model fit.
type FitMetricParams struct {
	ModelName      string  `json:"model_name"`
	Panel          string  `json:"panel"`
	DurationMs     float64 `json:"duration_ms"`
	Iterations     int     `json:"iterations"`
	SupportVectors int     `json:"support_vectors"`
	Converged      bool    `json:"converged"`
	Success        bool    `json:"success"`
}

// BatchMetricParams carries the data for one batch run.
type BatchMetricParams struct {
	BatchName         string  `json:"batch_name"`
	TotalItems        int     `json:"total_items"`
	SuccessItems      int     `json:"success_items"`
	FailedItems       int     `json:"failed_items"`
	CancelledItems    int     `json:"cancelled_items"`
	TotalDurationMs   float64 `json:"total_duration_ms"`
	AvgItemDurationMs float64 `json:"avg_item_duration_ms"`
	MaxConcurrency    int     `json:"max_concurrency"`
}

// ModelStats is a point-in-time snapshot of modelling metrics.
type ModelStats struct {
	TotalFits       int64   `json:"total_fits"`
	FailedFits      int64   `json:"failed_fits"`
	UnconvergedFits int64   `json:"unconverged_fits"`
	AvgFitLatencyMs float64 `json:"avg_fit_latency_ms"`
	P50LatencyMs    float64 `json:"p50_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms"`
	P99LatencyMs    float64 `json:"p99_latency_ms"`
	Batches         int64   `json:"batches"`
}

// ---------------------------------------------------------------------------
// Prometheus implementation
// ---------------------------------------------------------------------------

const metricsPrefix = "newdrug_model_"

var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

type prometheusModelMetrics struct {
	fitDuration             *prometheus.HistogramVec
	fitTotal                *prometheus.CounterVec
	fitIterations           *prometheus.HistogramVec
	supportVectors          *prometheus.HistogramVec
	batchProcessingDuration *prometheus.HistogramVec
	batchItemsTotal         *prometheus.CounterVec

	stats statsTracker
}

// NewPrometheusModelMetrics creates a Prometheus-backed collector and
// registers every metric with registerer (the default registerer when nil).
func NewPrometheusModelMetrics(registerer prometheus.Registerer) (ModelMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &prometheusModelMetrics{stats: newStatsTracker()}

	m.fitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "fit_duration_milliseconds",
		Help:    "Histogram of per-cluster model fit latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"model_name", "panel"})

	m.fitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "fit_total",
		Help: "Total number of model fits by outcome.",
	}, []string{"model_name", "panel", "status"})

	m.fitIterations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "fit_iterations",
		Help:    "Solver iterations per fit.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 9),
	}, []string{"model_name"})

	m.supportVectors = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "support_vectors",
		Help:    "Support vectors per fitted model.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"model_name"})

	m.batchProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "batch_processing_duration_milliseconds",
		Help:    "Histogram of batch processing duration in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"batch_name"})

	m.batchItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "batch_items_total",
		Help: "Total number of items processed in batches.",
	}, []string{"batch_name", "status"})

	collectors := []prometheus.Collector{
		m.fitDuration,
		m.fitTotal,
		m.fitIterations,
		m.supportVectors,
		m.batchProcessingDuration,
		m.batchItemsTotal,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *prometheusModelMetrics) RecordFit(_ context.Context, p *FitMetricParams) {
	if p == nil {
		return
	}
	status := "success"
	switch {
	case !p.Success:
		status = "failure"
	case !p.Converged:
		status = "unconverged"
	}
	m.fitDuration.WithLabelValues(p.ModelName, p.Panel).Observe(p.DurationMs)
	m.fitTotal.WithLabelValues(p.ModelName, p.Panel, status).Inc()
	if p.Success {
		m.fitIterations.WithLabelValues(p.ModelName).Observe(float64(p.Iterations))
		m.supportVectors.WithLabelValues(p.ModelName).Observe(float64(p.SupportVectors))
	}
	m.stats.recordFit(p)
}

func (m *prometheusModelMetrics) RecordBatchProcessing(_ context.Context, p *BatchMetricParams) {
	if p == nil {
		return
	}
	m.batchProcessingDuration.WithLabelValues(p.BatchName).Observe(p.TotalDurationMs)
	m.batchItemsTotal.WithLabelValues(p.BatchName, "success").Add(float64(p.SuccessItems))
	m.batchItemsTotal.WithLabelValues(p.BatchName, "failed").Add(float64(p.FailedItems))
	m.batchItemsTotal.WithLabelValues(p.BatchName, "cancelled").Add(float64(p.CancelledItems))
	m.stats.batches.Add(1)
}

func (m *prometheusModelMetrics) GetFitLatencyHistogram() LatencyHistogram { return m.stats.latency }

func (m *prometheusModelMetrics) GetCurrentStats() *ModelStats { return m.stats.snapshot() }

// ---------------------------------------------------------------------------
// Noop implementation
// ---------------------------------------------------------------------------

type noopModelMetrics struct{}

// NewNoopModelMetrics returns a no-op metrics implementation.
func NewNoopModelMetrics() ModelMetrics {
	return noopModelMetrics{}
}

func (noopModelMetrics) RecordFit(context.Context, *FitMetricParams)                 {}
func (noopModelMetrics) RecordBatchProcessing(context.Context, *BatchMetricParams) {}
func (noopModelMetrics) GetFitLatencyHistogram() LatencyHistogram                  { return newLatencyHistogram() }
func (noopModelMetrics) GetCurrentStats() *ModelStats                              { return &ModelStats{} }

// ---------------------------------------------------------------------------
// In-memory implementation (for testing)
// ---------------------------------------------------------------------------

// InMemoryModelMetrics keeps every recorded event for inspection in tests.
type InMemoryModelMetrics struct {
	mu      sync.Mutex
	fits    []FitMetricParams
	batches []BatchMetricParams
	stats   statsTracker
}

// NewInMemoryModelMetrics returns an in-memory metrics implementation.
func NewInMemoryModelMetrics() *InMemoryModelMetrics {
	return &InMemoryModelMetrics{stats: newStatsTracker()}
}

func (m *InMemoryModelMetrics) RecordFit(_ context.Context, p *FitMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	m.fits = append(m.fits, *p)
	m.mu.Unlock()
	m.stats.recordFit(p)
}

func (m *InMemoryModelMetrics) RecordBatchProcessing(_ context.Context, p *BatchMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	m.batches = append(m.batches, *p)
	m.mu.Unlock()
	m.stats.batches.Add(1)
}

func (m *InMemoryModelMetrics) GetFitLatencyHistogram() LatencyHistogram { return m.stats.latency }

func (m *InMemoryModelMetrics) GetCurrentStats() *ModelStats { return m.stats.snapshot() }

// Fits returns a copy of the recorded fits.
func (m *InMemoryModelMetrics) Fits() []FitMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FitMetricParams(nil), m.fits...)
}

// Batches returns a copy of the recorded batches.
func (m *InMemoryModelMetrics) Batches() []BatchMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BatchMetricParams(nil), m.batches...)
}

// ---------------------------------------------------------------------------
// statsTracker
// ---------------------------------------------------------------------------

type statsTracker struct {
	latency     *latencyHistogram
	total       *atomic.Int64
	failed      *atomic.Int64
	unconverged *atomic.Int64
	batches     *atomic.Int64
}

func newStatsTracker() statsTracker {
	return statsTracker{
		latency:     newLatencyHistogram(),
		total:       new(atomic.Int64),
		failed:      new(atomic.Int64),
		unconverged: new(atomic.Int64),
		batches:     new(atomic.Int64),
	}
}

func (s statsTracker) recordFit(p *FitMetricParams) {
	s.latency.Observe(p.DurationMs)
	s.total.Add(1)
	if !p.Success {
		s.failed.Add(1)
	} else if !p.Converged {
		s.unconverged.Add(1)
	}
}

func (s statsTracker) snapshot() *ModelStats {
	total := s.total.Load()
	var avg float64
	if total > 0 {
		avg = s.latency.Sum() / float64(total)
	}
	return &ModelStats{
		TotalFits:       total,
		FailedFits:      s.failed.Load(),
		UnconvergedFits: s.unconverged.Load(),
		AvgFitLatencyMs: avg,
		P50LatencyMs:    s.latency.Percentile(50),
		P95LatencyMs:    s.latency.Percentile(95),
		P99LatencyMs:    s.latency.Percentile(99),
		Batches:         s.batches.Load(),
	}
}

// ---------------------------------------------------------------------------
// latencyHistogram: in-memory and thread-safe, with percentiles
// ---------------------------------------------------------------------------

type latencyHistogram struct {
	mu      sync.Mutex
	samples []float64
	sum     float64
	sorted  bool
}

func newLatencyHistogram() *latencyHistogram {
	return &latencyHistogram{samples: make([]float64, 0, 256)}
}

func (h *latencyHistogram) Observe(durationMs float64) {
	h.mu.Lock()
	h.samples = append(h.samples, durationMs)
	h.sum += durationMs
	h.sorted = false
	h.mu.Unlock()
}

// Percentile returns the value at percentile p (0–100), linearly
// interpolated between ranks.
func (h *latencyHistogram) Percentile(p float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.samples)
	if n == 0 {
		return 0
	}
	if !h.sorted {
		sort.Float64s(h.samples)
		h.sorted = true
	}
	switch {
	case p <= 0:
		return h.samples[0]
	case p >= 100:
		return h.samples[n-1]
	}
	return stat.Quantile(p/100, stat.LinInterp, h.samples, nil)
}

func (h *latencyHistogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.samples))
}

func (h *latencyHistogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// compile-time interface checks
var (
	_ ModelMetrics     = (*prometheusModelMetrics)(nil)
	_ ModelMetrics     = noopModelMetrics{}
	_ ModelMetrics     = (*InMemoryModelMetrics)(nil)
	_ LatencyHistogram = (*latencyHistogram)(nil)
)

//Personal.AI order the ending
