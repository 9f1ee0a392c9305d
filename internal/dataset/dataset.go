package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the underlying value kind of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindBoolean
	KindTimestamp
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Column is a named, single-kind column. Only the slice matching Kind is populated;
// Valid marks non-null cells.
type Column struct {
	Name  string
	Kind  Kind
	Nums  []float64
	Bools []bool
	Times []time.Time
	Texts []string
	Valid []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Valid) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return !c.Valid[i] }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i. Booleans map to 0/1 and timestamps to unix seconds.
func (c *Column) Float(i int) float64 {
	switch c.Kind {
	case KindNumeric:
		return c.Nums[i]
	case KindBoolean:
		if c.Bools[i] {
			return 1
		}
		return 0
	case KindTimestamp:
		return float64(c.Times[i].Unix())
	default:
		f, err := strconv.ParseFloat(c.Texts[i], 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
}

// Label returns the string form of row i, used wherever a value acts as a category.
func (c *Column) Label(i int) string {
	switch c.Kind {
	case KindNumeric:
		return FormatNumber(c.Nums[i])
	case KindBoolean:
		return strconv.FormatBool(c.Bools[i])
	case KindTimestamp:
		return c.Times[i].Format(time.RFC3339)
	default:
		return c.Texts[i]
	}
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Dataset is a read-only collection of equally sized columns.
type Dataset struct {
	Name    string
	Columns []*Column
	rows    int
	index   map[string]int
}

// New assembles a dataset, validating that names are unique and lengths agree.
func New(name string, cols ...*Column) (*Dataset, error) {
	ds := &Dataset{Name: name, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			ds.rows = c.Len()
		} else if c.Len() != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), ds.rows)
		}
		ds.index[c.Name] = i
	}
	ds.Columns = cols
	return ds, nil
}

// MustNew is New for fixtures; it panics on invalid input.
func MustNew(name string, cols ...*Column) *Dataset {
	ds, err := New(name, cols...)
	if err != nil {
		panic(err)
	}
	return ds
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.Columns[i], true
}

// Names returns column names in dataset order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// MissingCells counts null cells across all columns.
func (d *Dataset) MissingCells() int {
	n := 0
	for _, c := range d.Columns {
		n += c.NullCount()
	}
	return n
}

// CompleteRows returns the indices of rows where every given column is non-null.
// It is the listwise-deletion view used by edge-local analysis; the dataset is never modified.
func (d *Dataset) CompleteRows(cols ...*Column) []int {
	rows := make([]int, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		keep := true
		for _, c := range cols {
			if !c.Valid[i] {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, i)
		}
	}
	return rows
}

// NewNumeric builds a numeric column; NaN entries are nulls.
func NewNumeric(name string, vals []float64) *Column {
	c := &Column{Name: name, Kind: KindNumeric, Nums: make([]float64, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		c.Nums[i] = v
		c.Valid[i] = true
	}
	return c
}

// NewText builds a text column; entries whose valid flag is false are nulls.
// A nil valid slice means every entry is present.
func NewText(name string, vals []string, valid []bool) *Column {
	c := &Column{Name: name, Kind: KindText, Texts: make([]string, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		c.Texts[i] = v
		c.Valid[i] = true
	}
	return c
}

// NewBoolean builds a boolean column; a nil valid slice means no nulls.
func NewBoolean(name string, vals []bool, valid []bool) *Column {
	c := &Column{Name: name, Kind: KindBoolean, Bools: make([]bool, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		c.Bools[i] = v
		c.Valid[i] = true
	}
	return c
}

// NewTimestamp builds a timestamp column; zero times are nulls.
func NewTimestamp(name string, vals []time.Time) *Column {
	c := &Column{Name: name, Kind: KindTimestamp, Times: make([]time.Time, len(vals)), Valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v.IsZero() {
			continue
		}
		c.Times[i] = v
		c.Valid[i] = true
	}
	return c
}
