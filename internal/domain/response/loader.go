package response

import (
	"context"

	"github.com/samber/lo"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/pkg/errors"
	"github.com/turtacn/newdrug-response/pkg/types/panel"
)

// LoaderConfig locates the per-panel reference libraries.
type LoaderConfig struct {
	PRISMMapPath string
	GDSCMapPath  string
	SMILESColumn string
}

// Aligned is a response matrix whose columns are in one-to-one, same-order
// correspondence with SMILES.
type Aligned struct {
	Panel   panel.Type
	Matrix  *Matrix
	SMILES  []string
	Dropped []string // response columns removed because the library lacks them
}

// KeepColumns returns a copy restricted to the columns at idx.
func (a *Aligned) KeepColumns(idx []int) (*Aligned, error) {
	m, err := a.Matrix.SelectColumns(idx)
	if err != nil {
		return nil, err
	}
	return &Aligned{
		Panel:   a.Panel,
		Matrix:  m,
		SMILES:  lo.Map(idx, func(j int, _ int) string { return a.SMILES[j] }),
		Dropped: a.Dropped,
	}, nil
}

// Loader resolves the reference structures for the columns of a response
// table according to the panel's alignment rule.
type Loader struct {
	cfg    LoaderConfig
	reader LibraryReader
	log    logging.Logger
}

// NewLoader returns a Loader.  A nil logger is replaced by a no-op logger.
func NewLoader(cfg LoaderConfig, reader LibraryReader, log logging.Logger) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.SMILESColumn == "" {
		cfg.SMILESColumn = "smiles"
	}
	return &Loader{cfg: cfg, reader: reader, log: log}
}

// Load aligns table with the reference library of p.
//
// PRISM identifies drugs by the first header line and requires every column
// to be present in the library.  GDSC identifies drugs by the last header
// line and keeps only the columns the library knows, in response order.
func (l *Loader) Load(ctx context.Context, p panel.Type, table *Table) (*Aligned, error) {
	switch p {
	case panel.PRISM:
		return l.loadPRISM(ctx, table)
	case panel.GDSC:
		return l.loadGDSC(ctx, table)
	default:
		return nil, errors.UnsupportedPanel(string(p))
	}
}

func (l *Loader) loadPRISM(ctx context.Context, table *Table) (*Aligned, error) {
	m, err := table.Matrix(0)
	if err != nil {
		return nil, err
	}
	lib, err := l.readLibrary(ctx, l.cfg.PRISMMapPath)
	if err != nil {
		return nil, err
	}

	smiles := make([]string, 0, len(m.Drugs()))
	for _, id := range m.Drugs() {
		s, ok := lib.Lookup(id)
		if !ok {
			return nil, errors.New(errors.CodeReferenceMissing,
				"reference structure missing for drug").WithDetail(id)
		}
		smiles = append(smiles, s)
	}
	if len(smiles) == 0 {
		return nil, errors.New(errors.CodeReferenceEmpty, "response table has no drug columns")
	}

	l.log.Info("aligned reference drugs",
		logging.String("panel", string(panel.PRISM)),
		logging.Int("drugs", len(smiles)),
		logging.Int("clusters", len(m.Clusters())))
	return &Aligned{Panel: panel.PRISM, Matrix: m, SMILES: smiles}, nil
}

func (l *Loader) loadGDSC(ctx context.Context, table *Table) (*Aligned, error) {
	m, err := table.Matrix(-1)
	if err != nil {
		return nil, err
	}
	lib, err := l.readLibrary(ctx, l.cfg.GDSCMapPath)
	if err != nil {
		return nil, err
	}

	filtered, dropped, err := FilterToLibrary(m, lib)
	if err != nil {
		return nil, err
	}
	_, cols := filtered.Dims()
	if cols == 0 {
		return nil, errors.New(errors.CodeReferenceEmpty,
			"no response column has a reference structure")
	}
	smiles := lo.Map(filtered.Drugs(), func(id string, _ int) string {
		s, _ := lib.Lookup(id)
		return s
	})

	if len(dropped) > 0 {
		l.log.Warn("response columns without reference structure dropped",
			logging.String("panel", string(panel.GDSC)),
			logging.Int("dropped", len(dropped)),
			logging.Strings("drugs", dropped))
	}
	l.log.Info("aligned reference drugs",
		logging.String("panel", string(panel.GDSC)),
		logging.Int("drugs", cols),
		logging.Int("clusters", len(filtered.Clusters())))
	return &Aligned{Panel: panel.GDSC, Matrix: filtered, SMILES: smiles, Dropped: dropped}, nil
}

func (l *Loader) readLibrary(ctx context.Context, path string) (*ReferenceLibrary, error) {
	lib, err := l.reader.ReadLibrary(ctx, path, l.cfg.SMILESColumn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeReferenceLoad, "failed to load reference library").WithDetail(path)
	}
	return lib, nil
}

// FilterToLibrary keeps the columns of m whose drug id is in lib, preserving
// m's column order, and returns the ids it removed.
func FilterToLibrary(m *Matrix, lib *ReferenceLibrary) (*Matrix, []string, error) {
	var keep []int
	var dropped []string
	for j, id := range m.Drugs() {
		if _, ok := lib.Lookup(id); ok {
			keep = append(keep, j)
		} else {
			dropped = append(dropped, id)
		}
	}
	filtered, err := m.SelectColumns(keep)
	if err != nil {
		return nil, nil, err
	}
	return filtered, dropped, nil
}

//Personal.AI order the ending
