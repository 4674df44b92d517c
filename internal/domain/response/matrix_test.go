package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

func sampleTable() *Table {
	return &Table{
		Levels: [][]string{
			{"BRD-1", "BRD-2", "BRD-3"},
			{"1003", "1004", "1005"},
		},
		Clusters: []string{"0", "1"},
		Values: [][]float64{
			{0.1, 0.2, 0.3},
			{0.4, 0.5, 0.6},
		},
	}
}

func TestTable_MatrixLevels(t *testing.T) {
	tbl := sampleTable()

	first, err := tbl.Matrix(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"BRD-1", "BRD-2", "BRD-3"}, first.Drugs())

	last, err := tbl.Matrix(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1003", "1004", "1005"}, last.Drugs())

	_, err = tbl.Matrix(2)
	assert.True(t, errors.IsCode(err, errors.CodeReferenceLoad))

	_, err = (&Table{}).Matrix(0)
	assert.Error(t, err)
}

func TestNewMatrix_Validation(t *testing.T) {
	_, err := NewMatrix([]string{"a", "a"}, []string{"d"}, [][]float64{{1}, {2}})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = NewMatrix([]string{"a"}, []string{"d", "d"}, [][]float64{{1, 2}})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = NewMatrix([]string{"a", "b"}, []string{"d"}, [][]float64{{1}})
	assert.True(t, errors.IsCode(err, errors.CodeShapeMismatch))

	_, err = NewMatrix([]string{"a"}, []string{"d", "e"}, [][]float64{{1}})
	assert.True(t, errors.IsCode(err, errors.CodeShapeMismatch))
}

func TestMatrix_Accessors(t *testing.T) {
	m, err := sampleTable().Matrix(0)
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 0.5, m.At(1, 1))
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, m.Target(1))

	j, ok := m.DrugIndex("BRD-3")
	assert.True(t, ok)
	assert.Equal(t, 2, j)
	_, ok = m.DrugIndex("BRD-9")
	assert.False(t, ok)

	assert.Equal(t, "Matrix(2 clusters × 3 drugs)", m.String())
}

func TestMatrix_TargetIsACopy(t *testing.T) {
	m, err := sampleTable().Matrix(0)
	require.NoError(t, err)
	row := m.Target(0)
	row[0] = 99
	assert.Equal(t, 0.1, m.At(0, 0))
}

func TestMatrix_SelectColumns(t *testing.T) {
	m, err := sampleTable().Matrix(0)
	require.NoError(t, err)

	s, err := m.SelectColumns([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"BRD-3", "BRD-1"}, s.Drugs())
	assert.Equal(t, []float64{0.6, 0.4}, s.Target(1))
	assert.Equal(t, m.Clusters(), s.Clusters())

	empty, err := m.SelectColumns(nil)
	require.NoError(t, err)
	_, cols := empty.Dims()
	assert.Equal(t, 0, cols)
	assert.Equal(t, []float64{}, empty.Target(0))

	_, err = m.SelectColumns([]int{5})
	assert.True(t, errors.IsCode(err, errors.CodeShapeMismatch))
}

func TestReferenceLibrary(t *testing.T) {
	lib := NewReferenceLibrary()
	require.NoError(t, lib.Add("d1", "CCO"))
	require.NoError(t, lib.Add("d2", "CCN"))
	assert.True(t, errors.IsCode(lib.Add("d1", "C"), errors.CodeReferenceLoad))

	s, ok := lib.Lookup("d2")
	assert.True(t, ok)
	assert.Equal(t, "CCN", s)
	assert.Equal(t, 2, lib.Len())
	_, ok = lib.Lookup("d3")
	assert.False(t, ok)
}

//Personal.AI order the ending
