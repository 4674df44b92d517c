package molecule

import (
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

func mustParse(t *testing.T, smiles string) *Molecule {
	t.Helper()
	m, err := ParseSMILES(smiles)
	require.NoError(t, err)
	return m
}

// subgraphCounts returns the number of connected subgraphs per bond count.
func subgraphCounts(m *Molecule, maxSize int) []int {
	level := make([][]int, 0, len(m.Bonds))
	for b := range m.Bonds {
		level = append(level, []int{b})
	}
	var counts []int
	for size := 1; size <= maxSize && len(level) > 0; size++ {
		counts = append(counts, len(level))
		level = extendSubgraphs(m, level)
	}
	return counts
}

func TestExtendSubgraphs_Counts(t *testing.T) {
	tests := []struct {
		smiles string
		want   []int
	}{
		{"CCCC", []int{3, 2, 1}},
		{"CC(C)(C)C", []int{4, 6, 4, 1}},
		{"C1CCCCC1", []int{6, 6, 6, 6, 6, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			assert.Equal(t, tt.want, subgraphCounts(mustParse(t, tt.smiles), 7))
		})
	}
}

func TestTopologicalFingerprint_Width(t *testing.T) {
	opts := DefaultFingerprintOptions()
	fp := TopologicalFingerprint(mustParse(t, "CCO"), opts)
	assert.Equal(t, uint(2048), fp.Len())
	assert.True(t, fp.Count() > 0)
	assert.True(t, fp.Count() <= 6)
}

func TestTopologicalFingerprint_NoBondsIsEmpty(t *testing.T) {
	opts := DefaultFingerprintOptions()
	assert.Equal(t, uint(0), TopologicalFingerprint(mustParse(t, "C"), opts).Count())
	assert.Equal(t, uint(0), TopologicalFingerprint(mustParse(t, "[Na+].[Cl-]"), opts).Count())
	assert.Equal(t, uint(0), TopologicalFingerprint(nil, opts).Count())
}

func TestTopologicalFingerprint_AtomOrderInvariant(t *testing.T) {
	opts := DefaultFingerprintOptions()
	pairs := [][2]string{
		{"CCO", "OCC"},
		{"Cc1ccccc1", "c1ccccc1C"},
		{"CC(=O)O", "OC(C)=O"},
	}
	for _, p := range pairs {
		a := TopologicalFingerprint(mustParse(t, p[0]), opts)
		b := TopologicalFingerprint(mustParse(t, p[1]), opts)
		assert.True(t, a.Equal(b), "%s vs %s", p[0], p[1])
	}
}

func TestTopologicalFingerprint_Deterministic(t *testing.T) {
	opts := DefaultFingerprintOptions()
	m := mustParse(t, "CC(=O)Oc1ccccc1C(=O)O")
	assert.True(t, TopologicalFingerprint(m, opts).Equal(TopologicalFingerprint(m, opts)))
}

func TestTopologicalFingerprint_DistinguishesStructures(t *testing.T) {
	opts := DefaultFingerprintOptions()
	a := TopologicalFingerprint(mustParse(t, "CCO"), opts)
	b := TopologicalFingerprint(mustParse(t, "CCN"), opts)
	c := TopologicalFingerprint(mustParse(t, "C=CO"), opts)
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTopologicalFingerprint_MinPath(t *testing.T) {
	opts := DefaultFingerprintOptions()
	opts.MinPath = 2
	assert.Equal(t, uint(0), TopologicalFingerprint(mustParse(t, "CC"), opts).Count())
	assert.True(t, TopologicalFingerprint(mustParse(t, "CCC"), opts).Count() > 0)
}

func TestNewFingerprintMatrix_WidthChecks(t *testing.T) {
	_, err := NewFingerprintMatrix(0, nil)
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintWidth))

	_, err = NewFingerprintMatrix(8, []*bitset.BitSet{bitset.New(8), bitset.New(16)})
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintWidth))

	m, err := NewFingerprintMatrix(8, []*bitset.BitSet{bitset.New(8)})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 8, m.Width())
}

func TestFingerprintMatrix_RowsAndOnBits(t *testing.T) {
	r0 := bitset.New(4).Set(0).Set(3)
	r1 := bitset.New(4).Set(1)
	m, err := NewFingerprintMatrix(4, []*bitset.BitSet{r0, r1})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Row(0).Equal(r0))
	assert.True(t, m.Row(1).Equal(r1))
	assert.Equal(t, 3, m.OnBits())

	empty, err := NewFingerprintMatrix(4, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, empty.OnBits())
}

//Personal.AI order the ending
