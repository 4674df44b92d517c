// Package svr implements epsilon-support vector regression with an RBF kernel
// over binary fingerprints.  The dual problem is solved by sequential minimal
// optimisation with second-order working-set selection.
package svr

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ---------------------------------------------------------------------------
// Features
// ---------------------------------------------------------------------------

// Features is a row-ordered set of equal-width binary feature vectors.
// *molecule.FingerprintMatrix satisfies it.
type Features interface {
	Len() int
	Width() int
	Row(i int) *bitset.BitSet
}

// ScaleGamma returns 1 / (width · Var(X)), the population variance being
// taken over every entry of X.  For 0/1 entries Var(X) = p(1 − p) with p the
// fraction of set bits.  A zero variance yields 1.
func ScaleGamma(x Features) float64 {
	n, w := x.Len(), x.Width()
	if n == 0 || w == 0 {
		return 1
	}
	var on uint
	for i := 0; i < n; i++ {
		on += x.Row(i).Count()
	}
	p := float64(on) / (float64(n) * float64(w))
	v := p * (1 - p)
	if v == 0 {
		return 1
	}
	return 1 / (float64(w) * v)
}

// RBF returns exp(−γ‖a − b‖²).  For binary vectors the squared distance is
// the size of the symmetric difference.
func RBF(a, b *bitset.BitSet, gamma float64) float64 {
	return math.Exp(-gamma * float64(a.SymmetricDifferenceCardinality(b)))
}

// ---------------------------------------------------------------------------
// Kernel matrices
// ---------------------------------------------------------------------------

// TrainKernel returns the n×n RBF kernel matrix of x.
func TrainKernel(x Features, gamma float64) (*mat.Dense, error) {
	n := x.Len()
	if n == 0 {
		return nil, errors.New(errors.CodeModelFit, "no training samples")
	}
	k := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		k.Set(i, i, 1)
		ri := x.Row(i)
		for j := i + 1; j < n; j++ {
			v := RBF(ri, x.Row(j), gamma)
			k.Set(i, j, v)
			k.Set(j, i, v)
		}
	}
	return k, nil
}

// CrossKernel returns the m×n matrix K[q][t] = RBF(query_q, train_t).  It
// returns nil when query is empty.
func CrossKernel(query, train Features, gamma float64) (*mat.Dense, error) {
	if query.Len() > 0 && query.Width() != train.Width() {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"query width %d differs from training width %d", query.Width(), train.Width())
	}
	m, n := query.Len(), train.Len()
	if m == 0 {
		return nil, nil
	}
	if n == 0 {
		return nil, errors.New(errors.CodeModelFit, "no training samples")
	}
	k := mat.NewDense(m, n, nil)
	for q := 0; q < m; q++ {
		rq := query.Row(q)
		for t := 0; t < n; t++ {
			k.Set(q, t, RBF(rq, train.Row(t), gamma))
		}
	}
	return k, nil
}

//Personal.AI order the ending
