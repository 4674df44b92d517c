package tabular

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

const responseCSV = `,BRD-1,BRD-2,BRD-3
,1003,1004,1005
cluster,,,
0,0.1,0.2,0.3
1,0.4,,0.6
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseResponseCSV(t *testing.T) {
	tbl, err := ParseResponseCSV(strings.NewReader(responseCSV), 2)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"BRD-1", "BRD-2", "BRD-3"}, {"1003", "1004", "1005"}}, tbl.Levels)
	assert.Equal(t, []string{"0", "1"}, tbl.Clusters)
	require.Len(t, tbl.Values, 2)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, tbl.Values[0])
	assert.True(t, math.IsNaN(tbl.Values[1][1]))

	m, err := tbl.Matrix(-1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1003", "1004", "1005"}, m.Drugs())
}

func TestParseResponseCSV_SingleHeader(t *testing.T) {
	tbl, err := ParseResponseCSV(strings.NewReader(",a,b\nc0,1,2\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, tbl.Levels)
	assert.Equal(t, []string{"c0"}, tbl.Clusters)
}

func TestParseResponseCSV_Errors(t *testing.T) {
	cases := map[string]struct {
		input   string
		headers int
		code    errors.ErrorCode
	}{
		"zero header rows": {",a\nx,1\n", 0, errors.CodeInvalidParam},
		"too few lines":    {",a\n", 2, errors.CodeTableIO},
		"no value columns": {"x\ny\n", 1, errors.CodeTableIO},
		"ragged row":       {",a,b\nc0,1\n", 1, errors.CodeTableIO},
		"not a number":     {",a\nc0,abc\n", 1, errors.CodeTableIO},
		"ragged header":    {",a,b\n,1\nc0,1,2\n", 2, errors.CodeTableIO},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponseCSV(strings.NewReader(tc.input), tc.headers)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), err.Error())
		})
	}
}

func TestReadResponseCSV_MissingFile(t *testing.T) {
	_, err := ReadResponseCSV(filepath.Join(t.TempDir(), "nope.csv"), 2)
	assert.True(t, errors.IsCode(err, errors.CodeTableIO))
}

func TestReadSMILES(t *testing.T) {
	p := writeTemp(t, "mol.txt", "\n CCO \r\nc1ccccc1\r\n\n\nCC(=O)O\n\n")
	got, err := ReadSMILES(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "c1ccccc1", "CC(=O)O"}, got)

	got, err = ParseSMILESList(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLibraryReader(t *testing.T) {
	p := writeTemp(t, "map.csv", "drug_id,name,smiles\nBRD-1,ethanol,CCO\nBRD-2,benzene,c1ccccc1\n")
	lib, err := NewLibraryReader().ReadLibrary(context.Background(), p, "smiles")
	require.NoError(t, err)
	assert.Equal(t, 2, lib.Len())
	s, ok := lib.Lookup("BRD-2")
	assert.True(t, ok)
	assert.Equal(t, "c1ccccc1", s)
	s, ok = lib.Lookup("BRD-1")
	assert.True(t, ok)
	assert.Equal(t, "CCO", s)
}

func TestParseLibrary_Errors(t *testing.T) {
	_, err := ParseLibrary(strings.NewReader("id,structure\na,C\n"), "smiles")
	assert.True(t, errors.IsCode(err, errors.CodeTableIO))

	_, err = ParseLibrary(strings.NewReader("id,smiles\na,C\na,CC\n"), "smiles")
	assert.True(t, errors.IsCode(err, errors.CodeReferenceLoad))

	_, err = ParseLibrary(strings.NewReader(""), "smiles")
	assert.True(t, errors.IsCode(err, errors.CodeTableIO))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLibraryReader().ReadLibrary(ctx, "unused.csv", "smiles")
	assert.True(t, errors.IsCode(err, errors.CodeCancelled))
}

type grid [][]float64

func (g grid) Dims() (int, int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g), len(g[0])
}
func (g grid) At(i, j int) float64 { return g[i][j] }

type emptyRows struct{ cols int }

func (e emptyRows) Dims() (int, int)    { return 0, e.cols }
func (e emptyRows) At(int, int) float64 { return 0 }

func TestEncodeWide(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeWide(&buf, []string{"CCO", "C,C"}, []string{"0", "1"}, grid{{0.5, 1e-7}, {-2, 3.25}})
	require.NoError(t, err)
	assert.Equal(t, ",0,1\nCCO,0.5,1e-07\n\"C,C\",-2,3.25\n", buf.String())

	err = EncodeWide(&buf, []string{"a"}, []string{"0", "1"}, grid{{1}})
	assert.True(t, errors.IsCode(err, errors.CodeShapeMismatch))
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	wide := filepath.Join(dir, "wide.csv")
	require.NoError(t, WriteWideCSV(wide, nil, []string{"0"}, emptyRows{cols: 1}))
	b, err := os.ReadFile(wide)
	require.NoError(t, err)
	assert.Equal(t, ",0\n", string(b))

	long := filepath.Join(dir, "long.csv")
	require.NoError(t, WriteRecordsCSV(long, []string{"a", "b"}, [][]string{{"1", "2"}}))
	b, err = os.ReadFile(long)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))

	err = WriteRecordsCSV(filepath.Join(dir, "missing", "x.csv"), nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeTableIO))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.1", FormatFloat(0.1))
	assert.Equal(t, "NaN", FormatFloat(math.NaN()))
	assert.Equal(t, "1e+21", FormatFloat(1e21))
}

//Personal.AI order the ending
