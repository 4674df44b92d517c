package prometheus

import (
	"context"
	"time"
)

// PipelineMetrics holds the metrics of a prediction run.
type PipelineMetrics struct {
	// Run
	RunsTotal        CounterVec
	RunLastTimestamp GaugeVec

	// Stages
	StageDuration HistogramVec

	// Volume
	MoleculesPredicted CounterVec
	MoleculesSkipped   CounterVec
	ClustersFitted     GaugeVec

	pusher Pusher
}

// Default Buckets
var (
	DefaultStageDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300}
)

// NewPipelineMetrics registers the run metrics on collector.  A nil pusher
// turns Push into a no-op.
func NewPipelineMetrics(collector MetricsCollector, pusher Pusher) *PipelineMetrics {
	m := &PipelineMetrics{pusher: pusher}

	m.RunsTotal = collector.RegisterCounter("runs_total", "Prediction runs", "panel", "status")
	m.RunLastTimestamp = collector.RegisterGauge("run_last_timestamp_seconds", "Completion time of the last run", "panel", "status")

	m.StageDuration = collector.RegisterHistogram("stage_duration_seconds", "Pipeline stage duration", DefaultStageDurationBuckets, "stage")

	m.MoleculesPredicted = collector.RegisterCounter("molecules_predicted_total", "Molecules with a written prediction", "panel")
	m.MoleculesSkipped = collector.RegisterCounter("molecules_skipped_total", "Molecules dropped for unparsable SMILES", "panel")
	m.ClustersFitted = collector.RegisterGauge("clusters_fitted", "Cluster models fitted in the last run", "panel")

	return m
}

// ObserveStage records the wall time of one pipeline stage.
func (m *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records the outcome of a finished run.
func (m *PipelineMetrics) RecordRun(panel, status string, molecules, clusters, skipped int) {
	m.RunsTotal.WithLabelValues(panel, status).Inc()
	m.RunLastTimestamp.WithLabelValues(panel, status).SetToCurrentTime()
	m.MoleculesPredicted.WithLabelValues(panel).Add(float64(molecules))
	m.MoleculesSkipped.WithLabelValues(panel).Add(float64(skipped))
	m.ClustersFitted.WithLabelValues(panel).Set(float64(clusters))
}

// Push forwards the gathered metrics to the configured gateway.
func (m *PipelineMetrics) Push(ctx context.Context) error {
	if m.pusher == nil {
		return nil
	}
	return m.pusher.Push(ctx)
}

//Personal.AI order the ending
