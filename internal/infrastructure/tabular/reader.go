// Package tabular reads and writes the CSV and plain-text files exchanged
// with the prediction pipeline.
package tabular

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/turtacn/newdrug-response/internal/domain/response"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response CSV
// ─────────────────────────────────────────────────────────────────────────────

// ReadResponseCSV reads a response table whose first column holds cluster
// ids and whose first headerRows lines are column headers.
func ReadResponseCSV(path string, headerRows int) (*response.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTableIO, "open response table").WithDetail(path)
	}
	defer f.Close()

	t, err := ParseResponseCSV(f, headerRows)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "read response table").WithDetail(path)
	}
	return t, nil
}

// ParseResponseCSV parses a response table from r.  A line directly after
// the headers whose value cells are all empty names the index and is
// skipped.  Empty value cells are read as NaN.
func ParseResponseCSV(r io.Reader, headerRows int) (*response.Table, error) {
	if headerRows < 1 {
		return nil, errors.Newf(errors.CodeInvalidParam, "header rows must be ≥ 1, got %d", headerRows)
	}

	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) < headerRows {
		return nil, errors.Newf(errors.CodeTableIO,
			"response table has %d lines, expected at least %d header lines", len(records), headerRows)
	}

	width := len(records[0])
	if width < 2 {
		return nil, errors.New(errors.CodeTableIO, "response table has no value columns")
	}

	t := &response.Table{Levels: make([][]string, headerRows)}
	for k := 0; k < headerRows; k++ {
		if len(records[k]) != width {
			return nil, errors.Newf(errors.CodeTableIO,
				"header line %d has %d fields, expected %d", k+1, len(records[k]), width)
		}
		t.Levels[k] = lo.Map(records[k][1:], func(s string, _ int) string { return strings.TrimSpace(s) })
	}

	body := records[headerRows:]
	if len(body) > 0 && isIndexNameRow(body[0]) {
		body = body[1:]
	}

	for n, rec := range body {
		line := headerRows + n + 1
		if len(rec) != width {
			return nil, errors.Newf(errors.CodeTableIO,
				"line %d has %d fields, expected %d", line, len(rec), width)
		}
		row := make([]float64, width-1)
		for j, cell := range rec[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeTableIO, "invalid response value").
					WithDetail(strconv.Itoa(line) + ":" + strconv.Itoa(j+2))
			}
			row[j] = v
		}
		t.Clusters = append(t.Clusters, strings.TrimSpace(rec[0]))
		t.Values = append(t.Values, row)
	}
	return t, nil
}

func isIndexNameRow(rec []string) bool {
	return len(rec) > 1 && lo.EveryBy(rec[1:], func(s string) bool { return strings.TrimSpace(s) == "" })
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTableIO, "malformed csv")
	}
	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SMILES list
// ─────────────────────────────────────────────────────────────────────────────

// ReadSMILES reads one SMILES string per non-blank line of a text file.
func ReadSMILES(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTableIO, "open smiles file").WithDetail(path)
	}
	defer f.Close()
	return ParseSMILESList(f)
}

// ParseSMILESList returns the trimmed non-blank lines of r in order.
func ParseSMILESList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			out = append(out, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTableIO, "read smiles list")
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reference mapping CSV
// ─────────────────────────────────────────────────────────────────────────────

// LibraryReader loads reference libraries from mapping CSV files.  It
// implements response.LibraryReader.
type LibraryReader struct{}

// NewLibraryReader returns a LibraryReader.
func NewLibraryReader() *LibraryReader { return &LibraryReader{} }

// ReadLibrary opens path and parses it with ParseLibrary.
func (*LibraryReader) ReadLibrary(ctx context.Context, path, smilesColumn string) (*response.ReferenceLibrary, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCancelled, "read library cancelled")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTableIO, "open reference library").WithDetail(path)
	}
	defer f.Close()
	return ParseLibrary(f, smilesColumn)
}

// ParseLibrary reads a mapping whose first column is the drug id and whose
// column named smilesColumn holds the structure.
func ParseLibrary(r io.Reader, smilesColumn string) (*response.ReferenceLibrary, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New(errors.CodeTableIO, "reference library is empty")
	}

	col := lo.IndexOf(lo.Map(records[0], func(s string, _ int) string { return strings.TrimSpace(s) }), smilesColumn)
	if col <= 0 {
		return nil, errors.Newf(errors.CodeTableIO, "reference library has no %q column", smilesColumn)
	}

	lib := response.NewReferenceLibrary()
	for n, rec := range records[1:] {
		if len(rec) <= col {
			return nil, errors.Newf(errors.CodeTableIO, "reference library line %d is truncated", n+2)
		}
		if err := lib.Add(strings.TrimSpace(rec[0]), strings.TrimSpace(rec[col])); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

var _ response.LibraryReader = (*LibraryReader)(nil)

//Personal.AI order the ending
