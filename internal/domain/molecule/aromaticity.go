package molecule

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

const (
	minRingSize  = 3
	maxRingSize  = 8
	maxFusedSize = 14
)

// ringSet is a closed cycle of atoms together with the bonds along it.  For a
// fused pair the shared bond belongs to bonds as well.
type ringSet struct {
	atoms []int
	bonds []int
}

// perceiveAromaticity rewrites the parsed graph so that one structure has one
// representation whatever way it was written.  Rings of 3 to 8 atoms, and
// ortho-fused pairs of them, whose atoms all contribute p electrons and whose
// count satisfies 4n+2 become aromatic: their atoms are flagged and their
// bonds take BondAromatic, replacing alternating single and double bonds.
// Aromatic bonds outside such rings become single.  A lowercase atom that
// lies in a small ring but in no aromatic one is an error.  Lowercase atoms
// that only sit in larger rings are kept as written.
func perceiveAromaticity(m *Molecule) error {
	inRing := ringBonds(m)
	rings := simpleCycles(m, inRing)
	candidates := append(slices.Clip(rings), fusedPairs(rings)...)

	electrons := make([]int, len(m.Atoms))
	for i := range m.Atoms {
		electrons[i] = piElectrons(m, i, inRing)
	}

	aromaticAtom := make([]bool, len(m.Atoms))
	aromaticBond := make([]bool, len(m.Bonds))
	for _, r := range candidates {
		if !huckel(r, electrons) {
			continue
		}
		for _, a := range r.atoms {
			aromaticAtom[a] = true
		}
		for _, b := range r.bonds {
			aromaticBond[b] = true
		}
	}

	inSmallRing := make([]bool, len(m.Atoms))
	for _, r := range rings {
		for _, a := range r.atoms {
			inSmallRing[a] = true
		}
	}
	ringAtom := make([]bool, len(m.Atoms))
	for bi, ok := range inRing {
		if ok {
			ringAtom[m.Bonds[bi].Begin] = true
			ringAtom[m.Bonds[bi].End] = true
		}
	}

	kept := make([]bool, len(m.Atoms))
	for i := range m.Atoms {
		a := &m.Atoms[i]
		switch {
		case aromaticAtom[i]:
			a.Aromatic = true
		case a.Aromatic && ringAtom[i] && !inSmallRing[i]:
			kept[i] = true
		case a.Aromatic:
			return fmt.Errorf("aromatic atom %s at index %d is not in an aromatic ring", a.Element, i)
		}
	}

	for i := range m.Bonds {
		b := &m.Bonds[i]
		switch {
		case aromaticBond[i]:
			b.Order = BondAromatic
		case b.Order == BondAromatic && !(inRing[i] && kept[b.Begin] && kept[b.End]):
			b.Order = BondSingle
		}
	}
	return nil
}

// huckel reports whether every atom of r contributes and the total is 4n+2.
func huckel(r ringSet, electrons []int) bool {
	sum := 0
	for _, a := range r.atoms {
		if electrons[a] < 0 {
			return false
		}
		sum += electrons[a]
	}
	return sum%4 == 2
}

// piElectrons returns the number of p electrons atom i donates to a ring, or
// -1 when it cannot be part of one.
func piElectrons(m *Molecule, i int, inRing []bool) int {
	a := m.Atoms[i]
	for _, bi := range m.incident[i] {
		if m.Bonds[bi].Order != BondDouble {
			continue
		}
		if inRing[bi] {
			return 1
		}
		return 0
	}

	degree := m.Degree(i)
	if a.Aromatic {
		switch a.Element {
		case "C":
			switch a.Charge {
			case -1:
				return 2
			case 1:
				return 0
			}
			return 1
		case "N", "P", "As":
			switch {
			case a.Charge == 1:
				return 1
			case a.HCount > 0 || degree == 3:
				return 2
			}
			return 1
		case "O", "S", "Se", "Te":
			if a.Charge == 1 {
				return 1
			}
			return 2
		case "B":
			return 0
		}
		return -1
	}

	switch a.Element {
	case "C":
		switch a.Charge {
		case -1:
			return 2
		case 1:
			return 0
		}
	case "N", "P":
		if a.Charge == 0 && degree <= 3 {
			return 2
		}
	case "O", "S", "Se", "Te":
		if a.Charge == 0 && degree == 2 {
			return 2
		}
	case "B":
		if degree <= 3 {
			return 0
		}
	}
	return -1
}

// ringBonds flags every bond that is not a bridge of the graph.
func ringBonds(m *Molecule) []bool {
	inRing := make([]bool, len(m.Bonds))
	for i := range inRing {
		inRing[i] = true
	}
	disc := make([]int, len(m.Atoms))
	low := make([]int, len(m.Atoms))
	for i := range disc {
		disc[i] = -1
	}

	clock := 0
	var visit func(a, via int)
	visit = func(a, via int) {
		disc[a], low[a] = clock, clock
		clock++
		for _, bi := range m.incident[a] {
			if bi == via {
				continue
			}
			o := m.Bonds[bi].Other(a)
			if disc[o] < 0 {
				visit(o, bi)
				low[a] = min(low[a], low[o])
				if low[o] > disc[a] {
					inRing[bi] = false
				}
				continue
			}
			low[a] = min(low[a], disc[o])
		}
	}
	for a := range m.Atoms {
		if disc[a] < 0 {
			visit(a, -1)
		}
	}
	return inRing
}

// simpleCycles enumerates every simple cycle of minRingSize to maxRingSize
// atoms over ring bonds.  Each cycle is reported once, starting from its
// lowest atom index.
func simpleCycles(m *Molecule, inRing []bool) []ringSet {
	var rings []ringSet
	onPath := make([]bool, len(m.Atoms))
	path := make([]int, 0, maxRingSize)
	via := make([]int, 0, maxRingSize)

	var extend func(start, a int)
	extend = func(start, a int) {
		for _, bi := range m.incident[a] {
			if !inRing[bi] {
				continue
			}
			o := m.Bonds[bi].Other(a)
			if o == start {
				if len(path) >= minRingSize && path[1] < path[len(path)-1] {
					rings = append(rings, ringSet{
						atoms: slices.Clone(path),
						bonds: append(slices.Clone(via), bi),
					})
				}
				continue
			}
			if o < start || onPath[o] || len(path) == maxRingSize {
				continue
			}
			onPath[o] = true
			path, via = append(path, o), append(via, bi)
			extend(start, o)
			path, via = path[:len(path)-1], via[:len(via)-1]
			onPath[o] = false
		}
	}

	for s := range m.Atoms {
		path, via = append(path[:0], s), via[:0]
		onPath[s] = true
		extend(s, s)
		onPath[s] = false
	}
	return rings
}

// fusedPairs joins every two rings that share exactly one bond into their
// envelope, so that systems such as indolizine are tested as a whole.
func fusedPairs(rings []ringSet) []ringSet {
	var out []ringSet
	for i := range rings {
		for j := i + 1; j < len(rings); j++ {
			if len(lo.Intersect(rings[i].bonds, rings[j].bonds)) != 1 {
				continue
			}
			atoms := lo.Union(rings[i].atoms, rings[j].atoms)
			if len(atoms) > maxFusedSize || len(atoms) != len(rings[i].atoms)+len(rings[j].atoms)-2 {
				continue
			}
			out = append(out, ringSet{atoms: atoms, bonds: lo.Union(rings[i].bonds, rings[j].bonds)})
		}
	}
	return out
}

//Personal.AI order the ending
