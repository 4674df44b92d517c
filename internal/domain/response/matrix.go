// Package response models the per-cluster drug-response matrix that the
// regression is trained on and the reference library that maps each
// reference drug to its structure.
package response

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Table
// ─────────────────────────────────────────────────────────────────────────────

// Table is the response CSV as read from disk, before a header level has been
// chosen.  Levels[k][j] is the k-th header line for value column j; the index
// column is not part of Levels.
type Table struct {
	Levels   [][]string
	Clusters []string
	Values   [][]float64
}

// Matrix builds a Matrix using header line level as the drug identifiers.
// A negative level counts from the last header line.
func (t *Table) Matrix(level int) (*Matrix, error) {
	if len(t.Levels) == 0 {
		return nil, errors.New(errors.CodeReferenceLoad, "response table has no header")
	}
	if level < 0 {
		level += len(t.Levels)
	}
	if level < 0 || level >= len(t.Levels) {
		return nil, errors.Newf(errors.CodeReferenceLoad, "header level %d out of range", level)
	}
	return NewMatrix(t.Clusters, t.Levels[level], t.Values)
}

// ─────────────────────────────────────────────────────────────────────────────
// Matrix
// ─────────────────────────────────────────────────────────────────────────────

// Matrix holds response scores with one row per cluster and one column per
// reference drug.  It is immutable; filtering returns a new Matrix.
type Matrix struct {
	clusters []string
	drugs    []string
	drugIdx  map[string]int
	values   *mat.Dense // nil when either dimension is zero
}

// NewMatrix validates ids and shape and copies values into a dense matrix.
func NewMatrix(clusters, drugs []string, values [][]float64) (*Matrix, error) {
	if err := checkUnique("cluster", clusters); err != nil {
		return nil, err
	}
	if err := checkUnique("drug", drugs); err != nil {
		return nil, err
	}
	if len(values) != len(clusters) {
		return nil, errors.Newf(errors.CodeShapeMismatch,
			"%d value rows for %d clusters", len(values), len(clusters))
	}

	m := &Matrix{
		clusters: append([]string(nil), clusters...),
		drugs:    append([]string(nil), drugs...),
	}
	m.indexDrugs()
	if len(clusters) == 0 || len(drugs) == 0 {
		return m, nil
	}

	data := make([]float64, 0, len(clusters)*len(drugs))
	for i, row := range values {
		if len(row) != len(drugs) {
			return nil, errors.Newf(errors.CodeShapeMismatch,
				"row %q has %d values, expected %d", clusters[i], len(row), len(drugs))
		}
		data = append(data, row...)
	}
	m.values = mat.NewDense(len(clusters), len(drugs), data)
	return m, nil
}

func checkUnique(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return errors.Newf(errors.CodeInvalidParam, "duplicate %s id %q", kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (m *Matrix) indexDrugs() {
	m.drugIdx = make(map[string]int, len(m.drugs))
	for j, d := range m.drugs {
		m.drugIdx[d] = j
	}
}

// Clusters returns the row identifiers.  The slice must not be modified.
func (m *Matrix) Clusters() []string { return m.clusters }

// Drugs returns the column identifiers.  The slice must not be modified.
func (m *Matrix) Drugs() []string { return m.drugs }

// Dims returns (clusters, drugs).
func (m *Matrix) Dims() (int, int) { return len(m.clusters), len(m.drugs) }

// At returns the response of cluster i to drug j.
func (m *Matrix) At(i, j int) float64 { return m.values.At(i, j) }

// DrugIndex returns the column of drug.
func (m *Matrix) DrugIndex(drug string) (int, bool) {
	j, ok := m.drugIdx[drug]
	return j, ok
}

// Target returns a copy of cluster i's responses, in column order.
func (m *Matrix) Target(i int) []float64 {
	out := make([]float64, len(m.drugs))
	if m.values != nil {
		mat.Row(out, i, m.values)
	}
	return out
}

// SelectColumns returns a Matrix with only the columns at idx, in that order.
func (m *Matrix) SelectColumns(idx []int) (*Matrix, error) {
	drugs := make([]string, len(idx))
	for k, j := range idx {
		if j < 0 || j >= len(m.drugs) {
			return nil, errors.Newf(errors.CodeShapeMismatch, "column %d out of range", j)
		}
		drugs[k] = m.drugs[j]
	}
	values := make([][]float64, len(m.clusters))
	for i := range m.clusters {
		row := make([]float64, len(idx))
		for k, j := range idx {
			row[k] = m.values.At(i, j)
		}
		values[i] = row
	}
	return NewMatrix(m.clusters, drugs, values)
}

// String implements fmt.Stringer for log output.
func (m *Matrix) String() string {
	return fmt.Sprintf("Matrix(%d clusters × %d drugs)", len(m.clusters), len(m.drugs))
}

//Personal.AI order the ending
