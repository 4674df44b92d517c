package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

// FormatFloat renders v with the shortest representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Grid is a labelled numeric table.
type Grid interface {
	Dims() (rows, cols int)
	At(i, j int) float64
}

// WriteWideCSV writes g with rowLabels as the first column and colLabels as
// the header.  The top-left header cell is empty.
func WriteWideCSV(path string, rowLabels, colLabels []string, g Grid) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeWide(w, rowLabels, colLabels, g)
	})
}

// EncodeWide is WriteWideCSV on an io.Writer.
func EncodeWide(w io.Writer, rowLabels, colLabels []string, g Grid) error {
	rows, cols := g.Dims()
	if rows != len(rowLabels) || cols != len(colLabels) {
		return errors.Newf(errors.CodeShapeMismatch,
			"grid is %d×%d but labels are %d×%d", rows, cols, len(rowLabels), len(colLabels))
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, cols+1)
	header = append(header, "")
	header = append(header, colLabels...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, errors.CodeTableIO, "write header")
	}

	rec := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		rec[0] = rowLabels[i]
		for j := 0; j < cols; j++ {
			rec[j+1] = FormatFloat(g.At(i, j))
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, errors.CodeTableIO, "write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.CodeTableIO, "flush csv")
	}
	return nil
}

// WriteRecordsCSV writes header followed by records.
func WriteRecordsCSV(path string, header []string, records [][]string) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return errors.Wrap(err, errors.CodeTableIO, "write header")
		}
		if err := cw.WriteAll(records); err != nil {
			return errors.Wrap(err, errors.CodeTableIO, "write records")
		}
		return nil
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeTableIO, "create output file").WithDetail(path)
	}
	if err := fn(f); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeUnknown, "write output file").WithDetail(path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.CodeTableIO, "close output file").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
