package dataset

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Options controls how raw cells are turned into typed columns.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// ParseDates infers timestamp columns from text cells.
	ParseDates bool
	// SheetName / SheetIndex select the XLSX sheet (index is 1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading datasets.
func DefaultOptions() Options {
	return Options{ParseDates: true, SheetIndex: 1}
}

var nullTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "nat": {}, "#n/a": {},
}

func isNullToken(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// SanitizeName replaces every non-word character with an underscore.
func SanitizeName(name string) string {
	return nonWord.ReplaceAllString(strings.TrimSpace(name), "_")
}

func sanitizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		name := SanitizeName(h)
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// fromRecords infers a kind for every column of a string grid and builds the dataset.
func fromRecords(name string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	names := sanitizeHeader(header)
	cols := make([]*Column, len(names))
	for j, colName := range names {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		cols[j] = inferColumn(colName, cells, opt)
	}
	return New(name, cols...)
}

// inferColumn picks the narrowest kind that every non-null cell satisfies:
// numeric, then boolean, then timestamp, then text.
func inferColumn(name string, cells []string, opt Options) *Column {
	n := len(cells)
	valid := make([]bool, n)
	present := 0
	for i, s := range cells {
		if !isNullToken(s) {
			valid[i] = true
			present++
		}
	}
	if present > 0 {
		if nums, ok := allNumeric(cells, valid, opt); ok {
			return &Column{Name: name, Kind: KindNumeric, Nums: nums, Valid: valid}
		}
		if bools, ok := allBoolean(cells, valid); ok {
			return &Column{Name: name, Kind: KindBoolean, Bools: bools, Valid: valid}
		}
		if opt.ParseDates {
			if times, ok := allTimes(cells, valid); ok {
				return &Column{Name: name, Kind: KindTimestamp, Times: times, Valid: valid}
			}
		}
	}
	if present == 0 {
		// an all-null column carries no kind evidence; keep it numeric like a float NaN column
		return &Column{Name: name, Kind: KindNumeric, Nums: make([]float64, n), Valid: valid}
	}
	texts := make([]string, n)
	for i, s := range cells {
		if valid[i] {
			texts[i] = s
		}
	}
	return &Column{Name: name, Kind: KindText, Texts: texts, Valid: valid}
}

func allNumeric(cells []string, valid []bool, opt Options) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, s := range cells {
		if !valid[i] {
			continue
		}
		f, ok := parseNumeric(s, opt)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func allBoolean(cells []string, valid []bool) ([]bool, bool) {
	out := make([]bool, len(cells))
	for i, s := range cells {
		if !valid[i] {
			continue
		}
		switch strings.ToLower(s) {
		case "true":
			out[i] = true
		case "false":
		default:
			return nil, false
		}
	}
	return out, true
}

func allTimes(cells []string, valid []bool) ([]time.Time, bool) {
	out := make([]time.Time, len(cells))
	for i, s := range cells {
		if !valid[i] {
			continue
		}
		t, ok := parseTimeMaybe(s)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.HasSuffix(raw, "%") {
		raw = strings.TrimSuffix(raw, "%")
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
