package molecule

import "github.com/bits-and-blooms/bitset"

// Tanimoto returns |a ∧ b| / |a ∨ b|.  Two empty fingerprints score 0.
func Tanimoto(a, b *bitset.BitSet) float64 {
	union := a.UnionCardinality(b)
	if union == 0 {
		return 0
	}
	return float64(a.IntersectionCardinality(b)) / float64(union)
}

// Nearest returns the row of refs most similar to query by Tanimoto score and
// that score.  Ties resolve to the lowest row.  An empty refs yields (-1, 0).
func Nearest(query *bitset.BitSet, refs *FingerprintMatrix) (int, float64) {
	best, bestScore := -1, -1.0
	for i := 0; i < refs.Len(); i++ {
		if s := Tanimoto(query, refs.Row(i)); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}

// ClassifySimilarity buckets a Tanimoto score for log output.
func ClassifySimilarity(score float64) string {
	switch {
	case score >= 0.85:
		return "high"
	case score >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

//Personal.AI order the ending
