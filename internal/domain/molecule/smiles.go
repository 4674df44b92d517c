package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// organicSubset lists the elements that may be written without brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lowercase aromatic symbols to their element.  The
// two-letter forms are only legal inside brackets.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As", "te": "Te",
}

// chiralClasses are the tetrahedral, allene, square-planar, bipyramidal and
// octahedral chirality prefixes.
var chiralClasses = map[string]bool{"TH": true, "AL": true, "SP": true, "TB": true, "OH": true}

type ringOpening struct {
	atom  int
	order BondOrder
	dir   byte
	set   bool
}

type smilesParser struct {
	src string
	pos int
	mol *Molecule

	prev     int
	branches []int
	rings    map[int]ringOpening

	bondSet   bool
	bondOrder BondOrder
	bondDir   byte
	bondPos   int
}

// ParseSMILES parses a SMILES string into a molecular graph.  It accepts the
// OpenSMILES grammar minus reaction syntax: organic-subset and bracket atoms,
// aromatic atoms, explicit bonds, branches, ring closures (single digits and
// %nn) and '.'-separated fragments.  Kekulé and aromatic spellings of a
// ring parse to the same graph.  Errors carry CodeMoleculeInvalidSMILES
// with the offending string as detail.
func ParseSMILES(smiles string) (*Molecule, error) {
	s := strings.TrimSpace(smiles)
	if s == "" {
		return nil, errors.InvalidSMILES("empty SMILES string")
	}
	p := &smilesParser{
		src:   s,
		mol:   &Molecule{SMILES: s},
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.parse(); err != nil {
		return nil, errors.InvalidSMILES(err.Error()).WithDetail(s)
	}
	if err := perceiveAromaticity(p.mol); err != nil {
		return nil, errors.InvalidSMILES(err.Error()).WithDetail(s)
	}
	return p.mol, nil
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf("branch without a preceding atom")
			}
			if p.bondSet {
				return p.errorf("bond before branch opening")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++

		case c == ')':
			if len(p.branches) == 0 {
				return p.errorf("unbalanced parenthesis")
			}
			if p.bondSet {
				return p.errorfAt(p.bondPos, "bond without a following atom")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++

		case isBondChar(c):
			if p.prev < 0 {
				return p.errorf("bond %q without a preceding atom", c)
			}
			if p.bondSet {
				return p.errorf("consecutive bond symbols")
			}
			p.bondSet = true
			p.bondOrder, p.bondDir = bondFromChar(c)
			p.bondPos = p.pos
			p.pos++

		case c == '.':
			if p.bondSet {
				return p.errorfAt(p.bondPos, "bond without a following atom")
			}
			if p.prev < 0 {
				return p.errorf("fragment separator without a preceding atom")
			}
			p.prev = -1
			p.pos++

		case c == '%' || isDigit(c):
			if err := p.parseRingClosure(); err != nil {
				return err
			}

		case c == '[':
			a, err := p.parseBracketAtom()
			if err != nil {
				return err
			}
			p.attach(a)

		default:
			a, err := p.parseOrganicAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		}
	}

	if p.bondSet {
		return p.errorfAt(p.bondPos, "bond without a following atom")
	}
	if len(p.branches) > 0 {
		return fmt.Errorf("unbalanced parenthesis: %d branch(es) left open", len(p.branches))
	}
	if len(p.rings) > 0 {
		first := -1
		for n := range p.rings {
			if first < 0 || n < first {
				first = n
			}
		}
		return fmt.Errorf("unclosed ring bond %d", first)
	}
	if len(p.mol.Atoms) == 0 {
		return fmt.Errorf("no atoms")
	}
	return nil
}

func (p *smilesParser) attach(a Atom) {
	idx := p.mol.addAtom(a)
	if p.prev >= 0 {
		order, dir := p.bondOrder, p.bondDir
		if !p.bondSet {
			order = implicitOrder(p.mol.Atoms[p.prev], a)
		}
		p.mol.addBond(p.prev, idx, order, dir)
	}
	p.prev = idx
	p.resetBond()
}

func (p *smilesParser) resetBond() {
	p.bondSet = false
	p.bondOrder = 0
	p.bondDir = 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Ring closures
// ─────────────────────────────────────────────────────────────────────────────

func (p *smilesParser) parseRingClosure() error {
	start := p.pos
	if p.prev < 0 {
		return p.errorf("ring closure without a preceding atom")
	}
	var n int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.errorf("'%%' must be followed by two digits")
		}
		n = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpening{atom: p.prev, order: p.bondOrder, dir: p.bondDir, set: p.bondSet}
		p.resetBond()
		return nil
	}
	delete(p.rings, n)

	if open.atom == p.prev {
		return p.errorfAt(start, "ring bond %d closes on its own atom", n)
	}
	if p.mol.hasBond(open.atom, p.prev) {
		return p.errorfAt(start, "ring bond %d duplicates an existing bond", n)
	}

	order, dir := open.order, open.dir
	switch {
	case open.set && p.bondSet:
		if open.order != p.bondOrder {
			return p.errorfAt(start, "ring bond %d has conflicting bond orders", n)
		}
	case p.bondSet:
		order, dir = p.bondOrder, p.bondDir
	case !open.set:
		order = implicitOrder(p.mol.Atoms[open.atom], p.mol.Atoms[p.prev])
	}
	p.mol.addBond(open.atom, p.prev, order, dir)
	p.resetBond()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Atoms
// ─────────────────────────────────────────────────────────────────────────────

func (p *smilesParser) parseOrganicAtom() (Atom, error) {
	c := p.src[p.pos]
	if c == '*' {
		p.pos++
		return Atom{Element: "*", AtomicNum: 0, HCount: -1}, nil
	}
	if c >= 'A' && c <= 'Z' {
		if p.pos+1 < len(p.src) {
			two := p.src[p.pos : p.pos+2]
			if organicSubset[two] {
				p.pos += 2
				return newAtom(two, false, -1), nil
			}
		}
		one := string(c)
		if organicSubset[one] {
			p.pos++
			return newAtom(one, false, -1), nil
		}
		return Atom{}, p.errorf("element %q must be written in brackets or is unknown", p.elementAt())
	}
	if c >= 'a' && c <= 'z' {
		one := string(c)
		if el, ok := aromaticSymbols[one]; ok {
			p.pos++
			return newAtom(el, true, -1), nil
		}
		return Atom{}, p.errorf("unknown aromatic atom %q", one)
	}
	return Atom{}, p.errorf("unexpected character %q", c)
}

func (p *smilesParser) parseBracketAtom() (Atom, error) {
	open := p.pos
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return Atom{}, p.errorf("unclosed bracket atom")
	}
	body := p.src[p.pos+1 : p.pos+end]
	p.pos += end + 1
	if strings.IndexByte(body, '[') >= 0 {
		return Atom{}, p.errorfAt(open, "unclosed bracket atom")
	}

	i := 0
	// isotope
	isotope := 0
	for i < len(body) && isDigit(body[i]) {
		isotope = isotope*10 + int(body[i]-'0')
		i++
	}

	// element symbol
	if i >= len(body) {
		return Atom{}, p.errorfAt(open, "bracket atom without an element")
	}
	var a Atom
	switch c := body[i]; {
	case c == '*':
		a = Atom{Element: "*", AtomicNum: 0}
		i++
	case c >= 'a' && c <= 'z':
		if i+1 < len(body) {
			if el, ok := aromaticSymbols[body[i:i+2]]; ok {
				a = newAtom(el, true, 0)
				i += 2
				break
			}
		}
		el, ok := aromaticSymbols[body[i:i+1]]
		if !ok {
			return Atom{}, p.errorfAt(open, "unknown aromatic atom %q", body[i:i+1])
		}
		a = newAtom(el, true, 0)
		i++
	case c >= 'A' && c <= 'Z':
		if i+1 < len(body) && body[i+1] >= 'a' && body[i+1] <= 'z' {
			if _, ok := AtomicNumber(body[i : i+2]); ok {
				a = newAtom(body[i:i+2], false, 0)
				i += 2
				break
			}
		}
		if _, ok := AtomicNumber(body[i : i+1]); !ok {
			return Atom{}, p.errorfAt(open, "unknown element %q", body[i:i+1])
		}
		a = newAtom(body[i:i+1], false, 0)
		i++
	default:
		return Atom{}, p.errorfAt(open, "bracket atom without an element")
	}
	a.Bracket = true
	a.Isotope = isotope

	// chirality
	if i < len(body) && body[i] == '@' {
		j := i + 1
		if j < len(body) && body[j] == '@' {
			j++
		} else if j+1 < len(body) && chiralClasses[body[j:j+2]] {
			j += 2
			for j < len(body) && isDigit(body[j]) {
				j++
			}
		}
		a.Chirality = body[i:j]
		i = j
	}

	// hydrogen count
	if i < len(body) && body[i] == 'H' {
		i++
		a.HCount = 1
		if i < len(body) && isDigit(body[i]) {
			a.HCount = int(body[i] - '0')
			i++
		}
	}

	// charge
	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			v := 0
			for i < len(body) && isDigit(body[i]) {
				v = v*10 + int(body[i]-'0')
				i++
			}
			a.Charge = sign * v
		default:
			v := 1
			for i < len(body) && body[i] == sym {
				v++
				i++
			}
			a.Charge = sign * v
		}
	}

	// atom class
	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return Atom{}, p.errorfAt(open, "atom class must be numeric")
		}
		for i < len(body) && isDigit(body[i]) {
			a.Class = a.Class*10 + int(body[i]-'0')
			i++
		}
	}

	if i != len(body) {
		return Atom{}, p.errorfAt(open, "unexpected %q in bracket atom", body[i:])
	}
	return a, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func newAtom(element string, aromatic bool, hcount int) Atom {
	n, _ := AtomicNumber(element)
	return Atom{Element: element, AtomicNum: n, Aromatic: aromatic, HCount: hcount}
}

// implicitOrder is the order of an unwritten bond: aromatic between two
// aromatic atoms, single otherwise.  perceiveAromaticity later demotes it to
// single when the bond is not in an aromatic ring.
func implicitOrder(a, b Atom) BondOrder {
	if a.Aromatic && b.Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func isBondChar(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondFromChar(c byte) (BondOrder, byte) {
	switch c {
	case '=':
		return BondDouble, 0
	case '#':
		return BondTriple, 0
	case '$':
		return BondQuadruple, 0
	case ':':
		return BondAromatic, 0
	case '/', '\\':
		return BondSingle, c
	default:
		return BondSingle, 0
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *smilesParser) elementAt() string {
	end := p.pos + 1
	if end < len(p.src) && p.src[end] >= 'a' && p.src[end] <= 'z' {
		end++
	}
	return p.src[p.pos:end]
}

func (p *smilesParser) errorf(format string, args ...interface{}) error {
	return p.errorfAt(p.pos, format, args...)
}

func (p *smilesParser) errorfAt(pos int, format string, args ...interface{}) error {
	return fmt.Errorf("%s at position %d", fmt.Sprintf(format, args...), pos)
}

//Personal.AI order the ending
