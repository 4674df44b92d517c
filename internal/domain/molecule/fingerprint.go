package molecule

import (
	"encoding/binary"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/zeebo/xxh3"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

// FingerprintOptions parameterises the topological fingerprint.
type FingerprintOptions struct {
	// Size is the number of bits per fingerprint.
	Size int
	// MinPath and MaxPath bound the number of bonds in an enumerated subgraph.
	MinPath int
	MaxPath int
	// BitsPerHash is the number of bits set for each distinct subgraph.
	BitsPerHash int
}

// DefaultFingerprintOptions returns the 2048-bit, 1–7 bond, two bits per
// subgraph scheme.
func DefaultFingerprintOptions() FingerprintOptions {
	return FingerprintOptions{Size: 2048, MinPath: 1, MaxPath: 7, BitsPerHash: 2}
}

func (o FingerprintOptions) validate() error {
	if o.Size < 1 || o.MinPath < 1 || o.MaxPath < o.MinPath || o.BitsPerHash < 1 {
		return errors.Newf(errors.CodeFingerprintFailed,
			"invalid fingerprint options: size=%d min_path=%d max_path=%d bits_per_hash=%d",
			o.Size, o.MinPath, o.MaxPath, o.BitsPerHash)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topological fingerprint
// ─────────────────────────────────────────────────────────────────────────────

// TopologicalFingerprint hashes every connected bond subgraph of the molecule
// with between opts.MinPath and opts.MaxPath bonds into a bit vector of
// opts.Size bits.  Subgraphs may be branched.  The subgraph hash depends only
// on the multiset of its bond descriptors, so atom numbering in the SMILES
// does not change the result.  A molecule without bonds yields an empty set.
func TopologicalFingerprint(m *Molecule, opts FingerprintOptions) *bitset.BitSet {
	fp := bitset.New(uint(opts.Size))
	if m == nil || len(m.Bonds) == 0 {
		return fp
	}

	scratch := make([]int, len(m.Atoms))
	buf := make([]byte, 0, opts.MaxPath*8)

	level := make([][]int, 0, len(m.Bonds))
	for b := range m.Bonds {
		level = append(level, []int{b})
	}

	for size := 1; size <= opts.MaxPath && len(level) > 0; size++ {
		if size >= opts.MinPath {
			for _, sg := range level {
				buf = subgraphKey(m, sg, scratch, buf[:0])
				setHashBits(fp, buf, opts)
			}
		}
		if size == opts.MaxPath {
			break
		}
		level = extendSubgraphs(m, level)
	}
	return fp
}

// extendSubgraphs grows every subgraph by one adjacent bond whose index is
// larger than the subgraph's smallest bond, which makes each subgraph
// reachable from exactly one seed.  Duplicates reached through different
// growth orders are removed.
func extendSubgraphs(m *Molecule, level [][]int) [][]int {
	seen := make(map[string]struct{}, len(level)*2)
	next := make([][]int, 0, len(level)*2)
	key := make([]byte, 0, 32)
	inSub := make(map[int]bool, 8)

	for _, sg := range level {
		for k := range inSub {
			delete(inSub, k)
		}
		for _, b := range sg {
			inSub[b] = true
		}
		seed := sg[0]
		for _, b := range sg {
			bond := m.Bonds[b]
			for _, atom := range [2]int{bond.Begin, bond.End} {
				for _, nb := range m.incident[atom] {
					if nb <= seed || inSub[nb] {
						continue
					}
					grown := insertSorted(sg, nb)
					key = key[:0]
					for _, x := range grown {
						key = binary.LittleEndian.AppendUint32(key, uint32(x))
					}
					if _, dup := seen[string(key)]; dup {
						continue
					}
					seen[string(key)] = struct{}{}
					next = append(next, grown)
				}
			}
		}
	}
	return next
}

func insertSorted(sg []int, b int) []int {
	out := make([]int, 0, len(sg)+1)
	i := 0
	for i < len(sg) && sg[i] < b {
		out = append(out, sg[i])
		i++
	}
	out = append(out, b)
	return append(out, sg[i:]...)
}

// subgraphKey serialises the sorted bond descriptors of sg into buf.  Each
// descriptor packs the bond order with the invariants of its two end atoms
// (atomic number, aromaticity, degree inside the subgraph), smaller end first.
func subgraphKey(m *Molecule, sg []int, degree []int, buf []byte) []byte {
	for _, b := range sg {
		degree[m.Bonds[b].Begin] = 0
		degree[m.Bonds[b].End] = 0
	}
	for _, b := range sg {
		degree[m.Bonds[b].Begin]++
		degree[m.Bonds[b].End]++
	}

	descs := make([]uint64, len(sg))
	for i, b := range sg {
		bond := m.Bonds[b]
		lo := atomInvariant(m.Atoms[bond.Begin], degree[bond.Begin])
		hi := atomInvariant(m.Atoms[bond.End], degree[bond.End])
		if lo > hi {
			lo, hi = hi, lo
		}
		descs[i] = uint64(bond.Order)<<48 | uint64(lo)<<24 | uint64(hi)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i] < descs[j] })

	for _, d := range descs {
		buf = binary.LittleEndian.AppendUint64(buf, d)
	}
	return buf
}

func atomInvariant(a Atom, degree int) uint32 {
	inv := uint32(a.AtomicNum)<<8 | uint32(degree&0x7f)
	if a.Aromatic {
		inv |= 0x80
	}
	return inv
}

func setHashBits(fp *bitset.BitSet, key []byte, opts FingerprintOptions) {
	for k := 0; k < opts.BitsPerHash; k++ {
		h := xxh3.HashSeed(key, uint64(k))
		fp.Set(uint(h % uint64(opts.Size)))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FingerprintMatrix
// ─────────────────────────────────────────────────────────────────────────────

// FingerprintMatrix is an ordered set of fingerprints of equal width.  Row i
// belongs to the i-th encoded molecule.
type FingerprintMatrix struct {
	width uint
	rows  []*bitset.BitSet
}

// NewFingerprintMatrix wraps rows, which must all be width bits wide.
func NewFingerprintMatrix(width int, rows []*bitset.BitSet) (*FingerprintMatrix, error) {
	if width < 1 {
		return nil, errors.Newf(errors.CodeFingerprintWidth, "fingerprint width must be ≥ 1, got %d", width)
	}
	for i, r := range rows {
		if r == nil || r.Len() != uint(width) {
			return nil, errors.Newf(errors.CodeFingerprintWidth, "row %d does not have width %d", i, width)
		}
	}
	return &FingerprintMatrix{width: uint(width), rows: rows}, nil
}

// Len returns the number of rows.
func (f *FingerprintMatrix) Len() int { return len(f.rows) }

// Width returns the number of bits per row.
func (f *FingerprintMatrix) Width() int { return int(f.width) }

// Row returns row i.  The returned set must not be modified.
func (f *FingerprintMatrix) Row(i int) *bitset.BitSet { return f.rows[i] }

// OnBits returns the total number of set bits across all rows.
func (f *FingerprintMatrix) OnBits() int {
	var n uint
	for _, r := range f.rows {
		n += r.Count()
	}
	return int(n)
}

//Personal.AI order the ending
