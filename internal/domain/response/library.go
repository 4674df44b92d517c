package response

import (
	"context"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ReferenceLibrary maps reference drug ids to SMILES.
type ReferenceLibrary struct {
	smiles map[string]string
}

// NewReferenceLibrary returns an empty library.
func NewReferenceLibrary() *ReferenceLibrary {
	return &ReferenceLibrary{smiles: make(map[string]string)}
}

// Add records id → smiles.  A repeated id is rejected.
func (l *ReferenceLibrary) Add(id, smiles string) error {
	if _, dup := l.smiles[id]; dup {
		return errors.Newf(errors.CodeReferenceLoad, "duplicate reference drug id %q", id)
	}
	l.smiles[id] = smiles
	return nil
}

// Lookup returns the SMILES recorded for id.
func (l *ReferenceLibrary) Lookup(id string) (string, bool) {
	s, ok := l.smiles[id]
	return s, ok
}

// Len returns the number of entries.
func (l *ReferenceLibrary) Len() int { return len(l.smiles) }

// LibraryReader loads a reference library from a mapping file whose first
// column is the drug id and whose smilesColumn holds the structure.
type LibraryReader interface {
	ReadLibrary(ctx context.Context, path, smilesColumn string) (*ReferenceLibrary, error)
}

//Personal.AI order the ending
