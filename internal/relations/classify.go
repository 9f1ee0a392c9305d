package relations

import (
	"sort"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
)

// Role is the coarse relation-side type of a column.
type Role int

const (
	RoleNumeric Role = iota
	RoleCategorical
)

func (r Role) String() string {
	if r == RoleNumeric {
		return "numeric"
	}
	return "categorical"
}

// Classify is a two-way split on the declared value kind: numeric columns are numeric,
// everything else (text, boolean, timestamp) is categorical.
func Classify(c *dataset.Column) Role {
	if c.Kind == dataset.KindNumeric {
		return RoleNumeric
	}
	return RoleCategorical
}

func numbers(c *dataset.Column, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = c.Float(r)
	}
	return out
}

func labels(c *dataset.Column, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = c.Label(r)
	}
	return out
}

// groupBy splits values by label; keys are returned in lexicographic order.
func groupBy(keys []string, values []float64) ([]string, map[string][]float64) {
	groups := map[string][]float64{}
	for i, k := range keys {
		groups[k] = append(groups[k], values[i])
	}
	return sortedKeys(groups), groups
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
