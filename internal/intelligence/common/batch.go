// Package common holds the concurrency and telemetry plumbing shared by the
// modelling packages.
package common

import (
	"context"
	stdliberrors "errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ---------------------------------------------------------------------------
// ItemStatus enumeration
// ---------------------------------------------------------------------------

// ItemStatus represents the outcome status of a single batch item.
type ItemStatus int

const (
	ItemStatusPending   ItemStatus = iota // not yet processed
	ItemStatusSuccess                     // processing completed successfully
	ItemStatusFailed                      // processing failed with an error
	ItemStatusTimeout                     // processing exceeded its timeout
	ItemStatusCancelled                   // processing was cancelled before or during the call
)

// String returns the human-readable representation of an ItemStatus.
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusPending:
		return "PENDING"
	case ItemStatusSuccess:
		return "SUCCESS"
	case ItemStatusFailed:
		return "FAILED"
	case ItemStatusTimeout:
		return "TIMEOUT"
	case ItemStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ---------------------------------------------------------------------------
// Generic types
// ---------------------------------------------------------------------------

// ProcessFunc is the signature for a function that processes a single item.
// index is the item's position in the input slice.
type ProcessFunc[T, R any] func(ctx context.Context, index int, item T) (R, error)

// ItemResult holds the outcome of processing a single item within a batch.
type ItemResult[R any] struct {
	Index      int        `json:"index"`
	Result     R          `json:"result"`
	Error      error      `json:"error,omitempty"`
	DurationMs float64    `json:"duration_ms"`
	Status     ItemStatus `json:"status"`
}

// BatchResult aggregates the outcomes of an entire batch run.  Results is
// in input order.
type BatchResult[R any] struct {
	Results           []*ItemResult[R] `json:"results"`
	TotalCount        int              `json:"total_count"`
	SuccessCount      int              `json:"success_count"`
	FailureCount      int              `json:"failure_count"`
	CancelledCount    int              `json:"cancelled_count"`
	TotalDurationMs   float64          `json:"total_duration_ms"`
	AvgItemDurationMs float64          `json:"avg_item_duration_ms"`
}

// Values returns the per-item results in input order.
func (b *BatchResult[R]) Values() []R {
	out := make([]R, len(b.Results))
	for i, r := range b.Results {
		out[i] = r.Result
	}
	return out
}

// ---------------------------------------------------------------------------
// BatchProcessor interface
// ---------------------------------------------------------------------------

// BatchProcessor runs one function over a slice of independent items.
type BatchProcessor[T, R any] interface {
	// Process executes fn for every item with bounded concurrency.  The
	// first failing item cancels the remaining work and its error is
	// returned alongside the partial BatchResult.
	Process(ctx context.Context, items []T, fn ProcessFunc[T, R]) (*BatchResult[R], error)
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type batchConfig struct {
	name           string
	maxConcurrency int
	itemTimeout    time.Duration
	metrics        ModelMetrics
	logger         logging.Logger
}

func defaultBatchConfig() *batchConfig {
	return &batchConfig{
		name:           "batch",
		maxConcurrency: runtime.NumCPU(),
		metrics:        NewNoopModelMetrics(),
		logger:         logging.NewNopLogger(),
	}
}

// BatchOption configures a batch processor.
type BatchOption func(*batchConfig)

// WithBatchName labels logs and metrics of the processor.
func WithBatchName(name string) BatchOption {
	return func(c *batchConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithMaxConcurrency sets the maximum number of items processed concurrently.
func WithMaxConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithItemTimeout bounds the duration of a single item.
func WithItemTimeout(d time.Duration) BatchOption {
	return func(c *batchConfig) {
		if d > 0 {
			c.itemTimeout = d
		}
	}
}

// WithBatchMetrics sets the metrics collector.
func WithBatchMetrics(m ModelMetrics) BatchOption {
	return func(c *batchConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(l logging.Logger) BatchOption {
	return func(c *batchConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type batchProcessor[T, R any] struct {
	cfg *batchConfig
}

// NewBatchProcessor creates a processor configured by opts.
func NewBatchProcessor[T, R any](opts ...BatchOption) BatchProcessor[T, R] {
	cfg := defaultBatchConfig()
	for _, o := range opts {
		o(cfg)
	}
	return &batchProcessor[T, R]{cfg: cfg}
}

func (p *batchProcessor[T, R]) Process(ctx context.Context, items []T, fn ProcessFunc[T, R]) (*BatchResult[R], error) {
	if fn == nil {
		return nil, errors.New(errors.CodeInvalidParam, "batch: process function is nil")
	}
	start := time.Now()

	results := make([]*ItemResult[R], len(items))
	for i := range results {
		results[i] = &ItemResult[R]{Index: i, Status: ItemStatusPending}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.maxConcurrency)

	for i := range items {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return p.runItem(gctx, i, items[i], fn, results[i])
		})
	}
	firstErr := g.Wait()

	res := p.aggregate(results, start)
	if firstErr == nil && ctx.Err() != nil {
		firstErr = errors.Wrap(ctx.Err(), errors.CodeCancelled, "batch cancelled")
	}

	p.cfg.metrics.RecordBatchProcessing(ctx, &BatchMetricParams{
		BatchName:         p.cfg.name,
		TotalItems:        res.TotalCount,
		SuccessItems:      res.SuccessCount,
		FailedItems:       res.FailureCount,
		CancelledItems:    res.CancelledCount,
		TotalDurationMs:   res.TotalDurationMs,
		AvgItemDurationMs: res.AvgItemDurationMs,
		MaxConcurrency:    p.cfg.maxConcurrency,
	})

	if firstErr != nil {
		p.cfg.logger.Error("batch aborted",
			logging.String("batch", p.cfg.name),
			logging.Int("total", res.TotalCount),
			logging.Int("success", res.SuccessCount),
			logging.Int("failed", res.FailureCount),
			logging.Err(firstErr),
		)
		return res, firstErr
	}
	p.cfg.logger.Debug("batch completed",
		logging.String("batch", p.cfg.name),
		logging.Int("total", res.TotalCount),
		logging.Float64("duration_ms", res.TotalDurationMs),
	)
	return res, nil
}

func (p *batchProcessor[T, R]) runItem(ctx context.Context, idx int, item T, fn ProcessFunc[T, R], out *ItemResult[R]) error {
	if err := ctx.Err(); err != nil {
		out.Status = ItemStatusCancelled
		out.Error = err
		return nil
	}

	itemCtx := ctx
	if p.cfg.itemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, p.cfg.itemTimeout)
		defer cancel()
	}

	start := time.Now()
	r, err := fn(itemCtx, idx, item)
	out.DurationMs = float64(time.Since(start).Microseconds()) / 1000.0

	if err == nil {
		out.Result = r
		out.Status = ItemStatusSuccess
		return nil
	}

	out.Error = err
	switch {
	case stdliberrors.Is(itemCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		out.Status = ItemStatusTimeout
		return errors.Wrap(err, errors.CodeCancelled, fmt.Sprintf("%s item %d timed out", p.cfg.name, idx))
	case ctx.Err() != nil && errors.IsCode(err, errors.CodeCancelled):
		out.Status = ItemStatusCancelled
		return nil
	default:
		out.Status = ItemStatusFailed
		return err
	}
}

func (p *batchProcessor[T, R]) aggregate(results []*ItemResult[R], start time.Time) *BatchResult[R] {
	res := &BatchResult[R]{Results: results, TotalCount: len(results)}
	var itemTotal float64
	var processed int
	for _, r := range results {
		switch r.Status {
		case ItemStatusSuccess:
			res.SuccessCount++
		case ItemStatusFailed, ItemStatusTimeout:
			res.FailureCount++
		default:
			// never started, or stopped by a sibling failure
			r.Status = ItemStatusCancelled
			res.CancelledCount++
		}
		if r.Status != ItemStatusCancelled {
			itemTotal += r.DurationMs
			processed++
		}
	}
	res.TotalDurationMs = float64(time.Since(start).Microseconds()) / 1000.0
	if processed > 0 {
		res.AvgItemDurationMs = itemTotal / float64(processed)
	}
	return res
}

//Personal.AI order the ending
