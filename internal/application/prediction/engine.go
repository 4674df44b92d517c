// Package prediction fits one regression model per cluster of a reference
// drug-response matrix and applies it to new molecules.
package prediction

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/newdrug-response/internal/domain/response"
	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/internal/intelligence/common"
	"github.com/turtacn/newdrug-response/internal/intelligence/svr"
	"github.com/turtacn/newdrug-response/pkg/errors"
	"github.com/turtacn/newdrug-response/pkg/types/panel"
)

// ---------------------------------------------------------------------------
// WideTable
// ---------------------------------------------------------------------------

// WideTable holds one predicted response per (molecule, cluster).  Rows
// follow the molecule input order, columns the cluster order of the
// response matrix.
type WideTable struct {
	Panel     panel.Type
	Molecules []string
	Clusters  []string
	values    *mat.Dense // nil when either dimension is zero
}

// NewWideTable assembles a table from per-cluster prediction columns.
func NewWideTable(p panel.Type, molecules, clusters []string, columns [][]float64) (*WideTable, error) {
	if len(columns) != len(clusters) {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"%d prediction columns for %d clusters", len(columns), len(clusters))
	}
	w := &WideTable{Panel: p, Molecules: molecules, Clusters: clusters}
	if len(molecules) == 0 || len(clusters) == 0 {
		return w, nil
	}
	w.values = mat.NewDense(len(molecules), len(clusters), nil)
	for j, col := range columns {
		if len(col) != len(molecules) {
			return nil, errors.Newf(errors.CodeShapeMismatch,
				"cluster %s has %d predictions for %d molecules", clusters[j], len(col), len(molecules))
		}
		w.values.SetCol(j, col)
	}
	return w, nil
}

// Dims returns (molecules, clusters).
func (w *WideTable) Dims() (int, int) { return len(w.Molecules), len(w.Clusters) }

// At returns the prediction for molecule i in cluster j.
func (w *WideTable) At(i, j int) float64 { return w.values.At(i, j) }

// Column returns a copy of the predictions of cluster j.
func (w *WideTable) Column(j int) []float64 {
	if w.values == nil {
		return []float64{}
	}
	return mat.Col(nil, j, w.values)
}

// Row returns a copy of the predictions of molecule i.
func (w *WideTable) Row(i int) []float64 {
	if w.values == nil {
		return []float64{}
	}
	return mat.Row(nil, i, w.values)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConcurrency bounds the number of clusters fitted in parallel.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithModelMetrics sets the collector that receives one event per fit.
func WithModelMetrics(m common.ModelMetrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine is the per-cluster regression engine.  It is stateless between
// calls to Predict.
type Engine struct {
	params      svr.Params
	concurrency int
	metrics     common.ModelMetrics
	log         logging.Logger
}

// NewEngine validates params and returns an Engine.
func NewEngine(params svr.Params, opts ...EngineOption) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		params:  params,
		metrics: common.NewNoopModelMetrics(),
		log:     logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Predict trains, for every cluster of responses, a model mapping reference
// fingerprints to that cluster's responses and evaluates it on query.
// Column j of responses must describe row j of reference, and molecules
// labels the rows of query.  The first failing fit aborts the pass.
func (e *Engine) Predict(ctx context.Context, p panel.Type, responses *response.Matrix,
	reference, query svr.Features, molecules []string) (*WideTable, error) {

	nClusters, nDrugs := responses.Dims()
	if reference.Len() != nDrugs {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"%d reference fingerprints for %d response columns", reference.Len(), nDrugs)
	}
	if query.Len() != len(molecules) {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"%d query fingerprints for %d molecules", query.Len(), len(molecules))
	}

	reg, err := svr.NewRegressor(reference, e.params)
	if err != nil {
		return nil, err
	}
	cross, err := reg.CrossKernel(query)
	if err != nil {
		return nil, err
	}
	e.log.Debug("reference kernel ready",
		logging.Int("samples", reg.Samples()),
		logging.Float64("gamma", reg.Gamma()),
		logging.Int("clusters", nClusters),
	)

	bp := common.NewBatchProcessor[string, []float64](
		common.WithBatchName("cluster_fit"),
		common.WithMaxConcurrency(e.concurrency),
		common.WithBatchMetrics(e.metrics),
		common.WithBatchLogger(e.log),
	)
	res, err := bp.Process(ctx, responses.Clusters(), func(ctx context.Context, i int, cluster string) ([]float64, error) {
		return e.fitCluster(ctx, p, reg, cross, cluster, responses.Target(i))
	})
	if err != nil {
		return nil, err
	}

	return NewWideTable(p, molecules, responses.Clusters(), res.Values())
}

func (e *Engine) fitCluster(ctx context.Context, p panel.Type, reg *svr.Regressor, cross *mat.Dense,
	cluster string, target []float64) ([]float64, error) {

	start := time.Now()
	model, err := reg.Fit(ctx, target)
	fm := &common.FitMetricParams{
		ModelName:  cluster,
		Panel:      p.String(),
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if err != nil {
		e.metrics.RecordFit(ctx, fm)
		if errors.IsCode(err, errors.CodeCancelled) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CodeModelFit, fmt.Sprintf("fit failed for cluster %s", cluster))
	}

	fm.Success = true
	fm.Converged = model.Converged
	fm.Iterations = model.Iterations
	fm.SupportVectors = model.SupportVectors
	e.metrics.RecordFit(ctx, fm)

	if !model.Converged {
		e.log.Warn("solver stopped at iteration limit",
			logging.String("cluster", cluster),
			logging.Int("iterations", model.Iterations),
		)
	}
	e.log.Debug("cluster model fitted", logging.String("cluster", cluster), logging.String("model", model.String()))

	return model.Predict(cross)
}

//Personal.AI order the ending
