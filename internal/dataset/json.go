package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ReadJSON parses pasted structured data: either a list of records
// ([{"a":1,"b":"x"}, ...]) or an object of columns ({"a":[1,2], "b":{"0":"x","1":"y"}}).
// Column order follows first appearance in the input.
func ReadJSON(name string, r io.Reader, opt Options) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var order []string
	var values map[string][]any
	switch tok {
	case json.Delim('['):
		order, values, err = readRecords(dec, opt.MaxRows)
	case json.Delim('{'):
		order, values, err = readColumns(dec, opt.MaxRows)
	default:
		return nil, fmt.Errorf("read json: expected array or object, got %v", tok)
	}
	if err != nil {
		return nil, err
	}
	rows := 0
	for _, v := range values {
		rows = max(rows, len(v))
	}
	names := sanitizeHeader(order)
	cols := make([]*Column, len(order))
	for i, key := range order {
		vals := values[key]
		if len(vals) < rows {
			vals = append(vals, make([]any, rows-len(vals))...)
		}
		cols[i] = columnFromValues(names[i], vals, opt)
	}
	return New(name, cols...)
}

func readRecords(dec *json.Decoder, maxRows int) ([]string, map[string][]any, error) {
	var order []string
	values := map[string][]any{}
	row := 0
	for dec.More() {
		if maxRows > 0 && row >= maxRows {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, fmt.Errorf("read record %d: %w", row+1, err)
			}
			continue
		}
		if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
			return nil, nil, fmt.Errorf("read record %d: expected object", row+1)
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, nil, fmt.Errorf("read record %d: %w", row+1, err)
			}
			key, _ := keyTok.(string)
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, nil, fmt.Errorf("read record %d field %q: %w", row+1, key, err)
			}
			col, seen := values[key]
			if !seen {
				order = append(order, key)
			}
			if len(col) < row {
				col = append(col, make([]any, row-len(col))...)
			}
			values[key] = append(col, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, nil, fmt.Errorf("read record %d: %w", row+1, err)
		}
		row++
	}
	return order, values, nil
}

func readColumns(dec *json.Decoder, maxRows int) ([]string, map[string][]any, error) {
	var order []string
	values := map[string][]any{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("read column: %w", err)
		}
		key, _ := keyTok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("read column %q: %w", key, err)
		}
		var vals []any
		switch v := raw.(type) {
		case []any:
			vals = v
		case map[string]any:
			vals = indexedValues(v)
		default:
			return nil, nil, fmt.Errorf("read column %q: expected array or object", key)
		}
		if maxRows > 0 && len(vals) > maxRows {
			vals = vals[:maxRows]
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = vals
	}
	return order, values, nil
}

// indexedValues orders {"0": a, "1": b} style objects by numeric index.
func indexedValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// columnFromValues keeps the JSON value kinds: all numbers become numeric, all booleans boolean,
// all strings text (or timestamps when every string parses as a date); mixed kinds degrade to text.
func columnFromValues(name string, vals []any, opt Options) *Column {
	n := len(vals)
	valid := make([]bool, n)
	var nNum, nBool, nStr, present int
	for i, v := range vals {
		switch v.(type) {
		case nil:
			continue
		case json.Number:
			nNum++
		case bool:
			nBool++
		case string:
			if isNullToken(v.(string)) {
				continue
			}
			nStr++
		}
		valid[i] = true
		present++
	}
	switch {
	case present == 0 || nNum == present:
		nums := make([]float64, n)
		for i, v := range vals {
			if valid[i] {
				f, err := v.(json.Number).Float64()
				if err != nil {
					valid[i] = false
					continue
				}
				nums[i] = f
			}
		}
		return &Column{Name: name, Kind: KindNumeric, Nums: nums, Valid: valid}
	case nBool == present:
		bools := make([]bool, n)
		for i, v := range vals {
			if valid[i] {
				bools[i] = v.(bool)
			}
		}
		return &Column{Name: name, Kind: KindBoolean, Bools: bools, Valid: valid}
	}
	texts := make([]string, n)
	for i, v := range vals {
		if valid[i] {
			texts[i] = stringify(v)
		}
	}
	if nStr == present && opt.ParseDates {
		if times, ok := allTimes(texts, valid); ok {
			return &Column{Name: name, Kind: KindTimestamp, Times: times, Valid: valid}
		}
	}
	return &Column{Name: name, Kind: KindText, Texts: texts, Valid: valid}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
