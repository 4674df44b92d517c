package svr

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// tau replaces a non-positive curvature in the working-set step.
const tau = 1e-12

// solution is the raw dual solution of one fit.
type solution struct {
	coef       []float64 // alpha⁺ − alpha⁻ per training sample
	rho        float64
	iterations int
	converged  bool
}

// smo solves the epsilon-SVR dual
//
//	min ½ βᵀQβ + pᵀβ   s.t.  yᵀβ = 0,  0 ≤ β ≤ C
//
// over 2n variables, the first n carrying y = +1 and p = ε − z, the last n
// carrying y = −1 and p = ε + z, with Q[i][j] = y_i y_j K(i mod n, j mod n).
type smo struct {
	k     *mat.Dense
	n     int
	c     float64
	y     []float64
	alpha []float64
	grad  []float64
	qd    []float64
}

func newSMO(k *mat.Dense, z []float64, c, epsilon float64) *smo {
	n := len(z)
	s := &smo{
		k:     k,
		n:     n,
		c:     c,
		y:     make([]float64, 2*n),
		alpha: make([]float64, 2*n),
		grad:  make([]float64, 2*n),
		qd:    make([]float64, 2*n),
	}
	for i := 0; i < n; i++ {
		s.y[i] = 1
		s.y[i+n] = -1
		s.grad[i] = epsilon - z[i]
		s.grad[i+n] = epsilon + z[i]
		d := k.At(i, i)
		s.qd[i] = d
		s.qd[i+n] = d
	}
	return s
}

func (s *smo) upper(i int) bool { return s.alpha[i] >= s.c }
func (s *smo) lower(i int) bool { return s.alpha[i] <= 0 }

// q returns Q[i][j].
func (s *smo) q(i int, kRow []float64, j int) float64 {
	return s.y[i] * s.y[j] * kRow[j%s.n]
}

// selectWorkingSet picks i by maximal violation and j by the largest
// second-order decrease of the objective.  ok is false once the maximal
// violation falls below tol.
func (s *smo) selectWorkingSet(tol float64) (int, int, bool) {
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	gmaxIdx, gminIdx := -1, -1
	objDiffMin := math.Inf(1)

	for t := range s.alpha {
		if s.y[t] == 1 {
			if !s.upper(t) && -s.grad[t] >= gmax {
				gmax, gmaxIdx = -s.grad[t], t
			}
		} else {
			if !s.lower(t) && s.grad[t] >= gmax {
				gmax, gmaxIdx = s.grad[t], t
			}
		}
	}
	if gmaxIdx < 0 {
		return -1, -1, false
	}

	i := gmaxIdx
	kRowI := s.k.RawRowView(i % s.n)
	for j := range s.alpha {
		var gradDiff, quad float64
		if s.y[j] == 1 {
			if s.lower(j) {
				continue
			}
			gradDiff = gmax + s.grad[j]
			if s.grad[j] >= gmax2 {
				gmax2 = s.grad[j]
			}
			quad = s.qd[i] + s.qd[j] - 2*s.y[i]*s.q(i, kRowI, j)
		} else {
			if s.upper(j) {
				continue
			}
			gradDiff = gmax - s.grad[j]
			if -s.grad[j] >= gmax2 {
				gmax2 = -s.grad[j]
			}
			quad = s.qd[i] + s.qd[j] + 2*s.y[i]*s.q(i, kRowI, j)
		}
		if gradDiff <= 0 {
			continue
		}
		if quad <= 0 {
			quad = tau
		}
		if objDiff := -(gradDiff * gradDiff) / quad; objDiff <= objDiffMin {
			gminIdx, objDiffMin = j, objDiff
		}
	}

	if gmax+gmax2 < tol || gminIdx < 0 {
		return -1, -1, false
	}
	return i, gminIdx, true
}

// update optimises the pair (i, j) analytically, clips to the box and
// refreshes the gradient.
func (s *smo) update(i, j int) {
	c := s.c
	kRowI := s.k.RawRowView(i % s.n)
	kRowJ := s.k.RawRowView(j % s.n)
	qij := s.q(i, kRowI, j)
	oldI, oldJ := s.alpha[i], s.alpha[j]

	if s.y[i] != s.y[j] {
		quad := s.qd[i] + s.qd[j] + 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.grad[i] - s.grad[j]) / quad
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta
		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = diff
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = -diff
		}
		if diff > 0 {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = c - diff
			}
		} else if s.alpha[j] > c {
			s.alpha[j] = c
			s.alpha[i] = c + diff
		}
	} else {
		quad := s.qd[i] + s.qd[j] - 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (s.grad[i] - s.grad[j]) / quad
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta
		if sum > c {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = sum - c
			}
		} else if s.alpha[j] < 0 {
			s.alpha[j] = 0
			s.alpha[i] = sum
		}
		if sum > c {
			if s.alpha[j] > c {
				s.alpha[j] = c
				s.alpha[i] = sum - c
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = sum
		}
	}

	dI := s.alpha[i] - oldI
	dJ := s.alpha[j] - oldJ
	for t := range s.grad {
		s.grad[t] += s.q(i, kRowI, t)*dI + s.q(j, kRowJ, t)*dJ
	}
}

// rho computes the offset from free variables, or from the midpoint of the
// feasible interval when every variable sits at a bound.
func (s *smo) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	sumFree, nFree := 0.0, 0
	for i := range s.alpha {
		yg := s.y[i] * s.grad[i]
		switch {
		case s.upper(i):
			if s.y[i] == -1 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.lower(i):
			if s.y[i] == 1 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}

func (s *smo) solve(tol float64, maxIter int, cancelled func() bool) solution {
	iter := 0
	converged := false
	for iter < maxIter {
		if iter%1000 == 0 && cancelled != nil && cancelled() {
			break
		}
		i, j, ok := s.selectWorkingSet(tol)
		if !ok {
			converged = true
			break
		}
		s.update(i, j)
		iter++
	}
	coef := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		coef[i] = s.alpha[i] - s.alpha[i+s.n]
	}
	return solution{coef: coef, rho: s.rho(), iterations: iter, converged: converged}
}

//Personal.AI order the ending
