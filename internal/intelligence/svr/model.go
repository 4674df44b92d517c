package svr

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ---------------------------------------------------------------------------
// Params
// ---------------------------------------------------------------------------

// Params holds the epsilon-SVR hyperparameters.
type Params struct {
	C         float64
	Epsilon   float64
	Gamma     float64 // 0 selects ScaleGamma
	Tolerance float64
	MaxIter   int // 0 selects max(1e7, 100·n)
}

// DefaultParams returns C = 1, ε = 0.1, γ = scale, tolerance 1e-3.
func DefaultParams() Params {
	return Params{C: 1, Epsilon: 0.1, Tolerance: 1e-3}
}

// Validate checks the ranges of p.
func (p Params) Validate() error {
	switch {
	case !(p.C > 0):
		return errors.Newf(errors.CodeInvalidParam, "svr: C must be > 0, got %g", p.C)
	case p.Epsilon < 0 || math.IsNaN(p.Epsilon):
		return errors.Newf(errors.CodeInvalidParam, "svr: epsilon must be ≥ 0, got %g", p.Epsilon)
	case p.Gamma < 0 || math.IsNaN(p.Gamma):
		return errors.Newf(errors.CodeInvalidParam, "svr: gamma must be ≥ 0, got %g", p.Gamma)
	case !(p.Tolerance > 0):
		return errors.Newf(errors.CodeInvalidParam, "svr: tolerance must be > 0, got %g", p.Tolerance)
	case p.MaxIter < 0:
		return errors.Newf(errors.CodeInvalidParam, "svr: max_iter must be ≥ 0, got %d", p.MaxIter)
	}
	return nil
}

func (p Params) maxIter(n int) int {
	if p.MaxIter > 0 {
		return p.MaxIter
	}
	if n > math.MaxInt32/100 {
		return math.MaxInt32
	}
	if 100*n > 10_000_000 {
		return 100 * n
	}
	return 10_000_000
}

// ---------------------------------------------------------------------------
// Regressor
// ---------------------------------------------------------------------------

// Regressor holds a training set and its kernel matrix.  The kernel is
// computed once and shared read-only by every Fit, so one Regressor serves
// any number of concurrent fits against different targets.
type Regressor struct {
	params Params
	gamma  float64
	train  Features
	kernel *mat.Dense
}

// NewRegressor validates params, resolves gamma and precomputes the training
// kernel.
func NewRegressor(train Features, params Params) (*Regressor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	gamma := params.Gamma
	if gamma == 0 {
		gamma = ScaleGamma(train)
	}
	k, err := TrainKernel(train, gamma)
	if err != nil {
		return nil, err
	}
	return &Regressor{params: params, gamma: gamma, train: train, kernel: k}, nil
}

// Gamma returns the kernel coefficient in use.
func (r *Regressor) Gamma() float64 { return r.gamma }

// Samples returns the number of training rows.
func (r *Regressor) Samples() int { return r.train.Len() }

// CrossKernel returns the kernel between query rows and the training rows.
func (r *Regressor) CrossKernel(query Features) (*mat.Dense, error) {
	return CrossKernel(query, r.train, r.gamma)
}

// Fit trains one model against target, which must have one finite value per
// training row.  Reaching the iteration limit is not an error; the returned
// Model reports Converged = false.
func (r *Regressor) Fit(ctx context.Context, target []float64) (*Model, error) {
	n := r.train.Len()
	if len(target) != n {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"target has %d values for %d training rows", len(target), n)
	}
	for i, v := range target {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Newf(errors.CodeModelFit, "target value %d is not finite", i)
		}
	}

	s := newSMO(r.kernel, target, r.params.C, r.params.Epsilon)
	sol := s.solve(r.params.Tolerance, r.params.maxIter(n), func() bool { return ctx.Err() != nil })
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCancelled, "fit cancelled")
	}

	nsv := 0
	for _, c := range sol.coef {
		if c != 0 {
			nsv++
		}
	}
	return &Model{
		Coef:           sol.coef,
		Rho:            sol.rho,
		Iterations:     sol.iterations,
		Converged:      sol.converged,
		SupportVectors: nsv,
	}, nil
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is a fitted epsilon-SVR.  It is only meaningful together with the
// Regressor that produced it.
type Model struct {
	Coef           []float64
	Rho            float64
	Iterations     int
	Converged      bool
	SupportVectors int
}

// Predict evaluates Σ coef_t·K[q][t] − ρ for every row q of cross.  A nil
// cross yields an empty result.
func (m *Model) Predict(cross *mat.Dense) ([]float64, error) {
	if cross == nil {
		return []float64{}, nil
	}
	rows, cols := cross.Dims()
	if cols != len(m.Coef) {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"kernel has %d columns for %d coefficients", cols, len(m.Coef))
	}
	out := make([]float64, rows)
	for q := 0; q < rows; q++ {
		out[q] = floats.Dot(m.Coef, cross.RawRowView(q)) - m.Rho
	}
	return out, nil
}

// String implements fmt.Stringer for log output.
func (m *Model) String() string {
	return fmt.Sprintf("svr.Model(sv=%d, rho=%.6g, iter=%d, converged=%t)",
		m.SupportVectors, m.Rho, m.Iterations, m.Converged)
}

//Personal.AI order the ending
