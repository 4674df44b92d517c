// Package molecule provides the molecular graph model, the SMILES parser that
// builds it, and the topological fingerprint encoder used to turn drug
// structures into fixed-length bit vectors for regression.
package molecule

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Bond order
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder classifies a bond.  Values are stable because they feed the
// fingerprint hash.
type BondOrder uint8

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
	BondAromatic  BondOrder = 12
)

// String returns the SMILES symbol of the bond order.
func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "-"
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		return ":"
	default:
		return fmt.Sprintf("BondOrder(%d)", uint8(o))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom / Bond
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a vertex of the molecular graph.
type Atom struct {
	Element   string // element symbol, "*" for the wildcard atom
	AtomicNum int
	Aromatic  bool
	Bracket   bool // written inside [...]
	Isotope   int
	Charge    int
	HCount    int // explicit H count from a bracket atom, -1 when implicit
	Chirality string
	Class     int
}

// Bond is an edge of the molecular graph.  Begin and End are atom indices.
type Bond struct {
	Begin int
	End   int
	Order BondOrder

	// Directional marks '/' or '\' on single bonds; carried but unused by the
	// fingerprint.
	Direction byte
}

// Other returns the atom at the opposite end of the bond from atom.
func (b Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is the parsed graph of one SMILES string.  It is immutable once
// returned by ParseSMILES.
type Molecule struct {
	SMILES string
	Atoms  []Atom
	Bonds  []Bond

	// incident[a] lists the indices of the bonds touching atom a.
	incident [][]int
}

// NumAtoms returns the number of atoms, explicit hydrogens included.
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

// IncidentBonds returns the bond indices touching atom.  The returned slice
// must not be modified.
func (m *Molecule) IncidentBonds(atom int) []int {
	if atom < 0 || atom >= len(m.incident) {
		return nil
	}
	return m.incident[atom]
}

// Degree returns the number of explicit bonds on atom.
func (m *Molecule) Degree(atom int) int {
	return len(m.IncidentBonds(atom))
}

// NumFragments returns the number of disconnected components.
func (m *Molecule) NumFragments() int {
	if len(m.Atoms) == 0 {
		return 0
	}
	seen := make([]bool, len(m.Atoms))
	n := 0
	stack := make([]int, 0, len(m.Atoms))
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		n++
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, bi := range m.incident[a] {
				o := m.Bonds[bi].Other(a)
				if !seen[o] {
					seen[o] = true
					stack = append(stack, o)
				}
			}
		}
	}
	return n
}

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.incident = append(m.incident, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) hasBond(a, b int) bool {
	for _, bi := range m.incident[a] {
		if m.Bonds[bi].Other(a) == b {
			return true
		}
	}
	return false
}

func (m *Molecule) addBond(a, b int, order BondOrder, dir byte) int {
	m.Bonds = append(m.Bonds, Bond{Begin: a, End: b, Order: order, Direction: dir})
	idx := len(m.Bonds) - 1
	m.incident[a] = append(m.incident[a], idx)
	m.incident[b] = append(m.incident[b], idx)
	return idx
}

// ─────────────────────────────────────────────────────────────────────────────
// Periodic table
// ─────────────────────────────────────────────────────────────────────────────

var elementSymbols = [...]string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra",
	"Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr",
	"Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn",
	"Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols)+1)
	for i, s := range elementSymbols {
		m[s] = i + 1
	}
	m["*"] = 0
	return m
}()

// AtomicNumber returns the atomic number of an element symbol.
func AtomicNumber(symbol string) (int, bool) {
	n, ok := atomicNumbers[symbol]
	return n, ok
}

//Personal.AI order the ending
