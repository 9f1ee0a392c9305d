package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVInfersKinds(t *testing.T) {
	csv := strings.Join([]string{
		"dose (mg),outcome,region,active,visit date,note",
		"1,2.5,A,true,2024-01-05,first",
		"2,,B,false,2024-02-10,second",
		"NA,7.5,A,TRUE,2024-03-15,",
		"4,9.0,B,false,,fourth",
	}, "\n")

	ds, err := ReadCSV("trial.csv", strings.NewReader(csv), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 4, ds.Rows())
	assert.Equal(t, []string{"dose__mg_", "outcome", "region", "active", "visit_date", "note"}, ds.Names())

	kinds := map[string]Kind{}
	for _, c := range ds.Columns {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, KindNumeric, kinds["dose__mg_"])
	assert.Equal(t, KindNumeric, kinds["outcome"])
	assert.Equal(t, KindText, kinds["region"])
	assert.Equal(t, KindBoolean, kinds["active"])
	assert.Equal(t, KindTimestamp, kinds["visit_date"])
	assert.Equal(t, KindText, kinds["note"])

	dose, _ := ds.Column("dose__mg_")
	assert.True(t, dose.IsNull(2))
	assert.Equal(t, 1, dose.NullCount())
	assert.Equal(t, 4.0, dose.Float(3))
	assert.Equal(t, 4, ds.MissingCells())
}

func TestReadCSVLocaleNumbers(t *testing.T) {
	csv := "Score;Amount\n10,5;1.000,0\n9,5;2.500,5\n"
	opt := DefaultOptions()
	opt.Delimiter = ';'
	opt.DecimalSeparator = ','
	opt.ThousandsSeparator = '.'

	ds, err := ReadCSV("locale.csv", strings.NewReader(csv), opt)
	require.NoError(t, err)
	amount, ok := ds.Column("Amount")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, amount.Kind)
	assert.InDelta(t, 2500.5, amount.Nums[1], 1e-9)
}

func TestCompleteRowsIsEdgeLocal(t *testing.T) {
	x := NewNumeric("x", []float64{1, math.NaN(), 3, 4})
	y := NewNumeric("y", []float64{1, 2, math.NaN(), 4})
	z := NewText("z", []string{"a", "b", "c", "d"}, []bool{false, true, true, true})
	ds := MustNew("t", x, y, z)

	assert.Equal(t, []int{0, 3}, ds.CompleteRows(x, y))
	assert.Equal(t, []int{1, 3}, ds.CompleteRows(y, z))
	// the dataset keeps its nulls
	assert.Equal(t, 3, ds.MissingCells())
}

func TestNewRejectsMismatchedColumns(t *testing.T) {
	_, err := New("bad", NewNumeric("a", []float64{1, 2}), NewNumeric("b", []float64{1}))
	require.Error(t, err)

	_, err = New("dup", NewNumeric("a", []float64{1}), NewNumeric("a", []float64{2}))
	require.Error(t, err)
}

func TestReadJSONRecordsAndColumns(t *testing.T) {
	records := `[{"city":"Paris","temp":21.5,"sunny":true},{"city":"Oslo","temp":null,"sunny":false},{"city":"Rome","temp":27}]`
	ds, err := ReadJSON("pasted", strings.NewReader(records), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "temp", "sunny"}, ds.Names())
	assert.Equal(t, 3, ds.Rows())
	sunny, _ := ds.Column("sunny")
	assert.Equal(t, KindBoolean, sunny.Kind)
	assert.True(t, sunny.IsNull(2))
	temp, _ := ds.Column("temp")
	assert.Equal(t, KindNumeric, temp.Kind)
	assert.True(t, temp.IsNull(1))

	columns := `{"b":{"1":"y","0":"x"},"a":[1,2]}`
	ds, err = ReadJSON("pasted", strings.NewReader(columns), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ds.Names())
	b, _ := ds.Column("b")
	assert.Equal(t, "x", b.Label(0))
	assert.Equal(t, "y", b.Label(1))
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	tsv := filepath.Join(dir, "metrics.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("a\tb\n1\tx\n2\ty\n"), 0o644))
	ds, err := Load(tsv, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "metrics.tsv", ds.Name)
	assert.Equal(t, []string{"a", "b"}, ds.Names())

	js := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(js, []byte(`[{"k":"v"}]`), 0o644))
	ds, err = Load(js, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Rows())
}

func TestSanitizeHeaderDeduplicates(t *testing.T) {
	assert.Equal(t, []string{"a_b", "a_b_1", "unnamed_2"}, sanitizeHeader([]string{"a b", "a-b", ""}))
}

func TestColIndexFromRef(t *testing.T) {
	assert.Equal(t, 0, colIndexFromRef("A1"))
	assert.Equal(t, 2, colIndexFromRef("C12"))
	assert.Equal(t, 27, colIndexFromRef("AB3"))
}
