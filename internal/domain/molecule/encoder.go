package molecule

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// Encoder turns an ordered list of SMILES strings into a FingerprintMatrix
// with one row per input, in input order.
type Encoder interface {
	Encode(ctx context.Context, smiles []string) (*FingerprintMatrix, error)
	EncodeAll(ctx context.Context, smiles []string) (*EncodeResult, error)
	Width() int
}

// Failure records a SMILES string that could not be encoded.
type Failure struct {
	Index  int
	SMILES string
	Err    error
}

// EncodeResult is the lenient encoding of a list: Matrix holds the rows of the
// inputs listed in Kept, and Failures lists everything else.
type EncodeResult struct {
	Matrix   *FingerprintMatrix
	Kept     []int
	Failures []Failure
}

// TopologicalEncoder implements Encoder with TopologicalFingerprint.  It is
// stateless and safe for concurrent use.
type TopologicalEncoder struct {
	opts FingerprintOptions
}

// NewTopologicalEncoder validates opts and returns an encoder.
func NewTopologicalEncoder(opts FingerprintOptions) (*TopologicalEncoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &TopologicalEncoder{opts: opts}, nil
}

// Width returns the fingerprint width in bits.
func (e *TopologicalEncoder) Width() int { return e.opts.Size }

// EncodeOne parses and fingerprints a single SMILES string.
func (e *TopologicalEncoder) EncodeOne(smiles string) (*bitset.BitSet, error) {
	mol, err := ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	return TopologicalFingerprint(mol, e.opts), nil
}

// Encode fingerprints every input and fails on the first unparseable one.
func (e *TopologicalEncoder) Encode(ctx context.Context, smiles []string) (*FingerprintMatrix, error) {
	return encodeStrict(ctx, e.opts.Size, smiles, e.EncodeOne)
}

// EncodeAll fingerprints every parseable input and reports the rest as
// failures.  Only cancellation is returned as an error.
func (e *TopologicalEncoder) EncodeAll(ctx context.Context, smiles []string) (*EncodeResult, error) {
	return encodeLenient(ctx, e.opts.Size, smiles, e.EncodeOne)
}

type encodeFunc func(smiles string) (*bitset.BitSet, error)

func encodeStrict(ctx context.Context, width int, smiles []string, one encodeFunc) (*FingerprintMatrix, error) {
	rows := make([]*bitset.BitSet, len(smiles))
	for i, s := range smiles {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "encoding cancelled")
		}
		fp, err := one(s)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeMoleculeInvalidSMILES,
				fmt.Sprintf("molecule %d could not be parsed", i)).WithDetail(s)
		}
		rows[i] = fp
	}
	return NewFingerprintMatrix(width, rows)
}

func encodeLenient(ctx context.Context, width int, smiles []string, one encodeFunc) (*EncodeResult, error) {
	res := &EncodeResult{Kept: make([]int, 0, len(smiles))}
	rows := make([]*bitset.BitSet, 0, len(smiles))
	for i, s := range smiles {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "encoding cancelled")
		}
		fp, err := one(s)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, SMILES: s, Err: err})
			continue
		}
		rows = append(rows, fp)
		res.Kept = append(res.Kept, i)
	}
	m, err := NewFingerprintMatrix(width, rows)
	if err != nil {
		return nil, err
	}
	res.Matrix = m
	return res, nil
}

//Personal.AI order the ending
