package prediction

import (
	"sort"
	"strconv"

	"github.com/turtacn/newdrug-response/internal/infrastructure/tabular"
	"github.com/turtacn/newdrug-response/pkg/errors"
	"github.com/turtacn/newdrug-response/pkg/types/panel"
)

// LongRow is one (cluster, molecule) prediction.
type LongRow struct {
	Cluster        string
	Molecule       string
	Value          float64
	Classification panel.Classification // empty unless the panel is classified
	Rank           int
}

// LongTable is the ranked long form of a WideTable.  Rows are cluster-major
// in wide-table column order and molecule-minor in input order.
type LongTable struct {
	Panel panel.Type
	Rows  []LongRow
}

// Header returns the column names of the long table.
func (t *LongTable) Header() []string {
	h := []string{"cluster", "molecule", t.Panel.ValueColumn()}
	if t.Panel.Classified() {
		h = append(h, "classification")
	}
	return append(h, "rank")
}

// Records renders the rows in Header order.
func (t *LongTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := []string{r.Cluster, r.Molecule, tabular.FormatFloat(r.Value)}
		if t.Panel.Classified() {
			rec = append(rec, string(r.Classification))
		}
		out[i] = append(rec, strconv.Itoa(r.Rank))
	}
	return out
}

// Transform melts w into a LongTable for panel p.  Within each cluster the
// molecules are ranked 1..K by ascending prediction, ties keeping input
// order.  PRISM rows are also classified.
func Transform(w *WideTable, p panel.Type) (*LongTable, error) {
	if !p.IsValid() {
		return nil, errors.UnsupportedPanel(string(p))
	}

	nMol, nClusters := w.Dims()
	out := &LongTable{Panel: p, Rows: make([]LongRow, 0, nMol*nClusters)}
	for j, cluster := range w.Clusters {
		col := w.Column(j)
		ranks := ordinalRanks(col)
		for i, mol := range w.Molecules {
			row := LongRow{
				Cluster:  cluster,
				Molecule: mol,
				Value:    col[i],
				Rank:     ranks[i],
			}
			if p.Classified() {
				row.Classification = panel.Classify(col[i])
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// ordinalRanks returns the 1-based ascending rank of each value.  Equal
// values are ranked by position.
func ordinalRanks(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })
	ranks := make([]int, len(values))
	for r, i := range order {
		ranks[i] = r + 1
	}
	return ranks
}

//Personal.AI order the ending
