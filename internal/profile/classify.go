package profile

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
)

// Type is the descriptive role of a column.
type Type string

const (
	TypeContinuous  Type = "continuous"
	TypeCategorical Type = "categorical"
	TypeString      Type = "string"
	TypeBoolean     Type = "boolean"
	TypeDatetime    Type = "datetime"
	TypeUnknown     Type = "unknown"
)

var sentenceRe = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// Classify picks the profile type of a column. Low-cardinality numeric columns are treated
// as categorical; text columns go through the free-text heuristic.
func Classify(c *dataset.Column, stringThreshold float64) Type {
	rows := c.Len()
	if c.NullCount() == rows {
		return TypeUnknown
	}
	switch c.Kind {
	case dataset.KindNumeric:
		limit := min(10, rows/10)
		if len(distinct(c)) <= limit {
			return TypeCategorical
		}
		return TypeContinuous
	case dataset.KindBoolean:
		return TypeBoolean
	case dataset.KindTimestamp:
		return TypeDatetime
	}
	if IsFreeText(present(c), stringThreshold) {
		return TypeString
	}
	return TypeCategorical
}

// IsFreeText reports whether values look like prose or identifiers rather than a small set of
// categories: long on average, many words, sentence punctuation, or mostly unique.
func IsFreeText(values []string, threshold float64) bool {
	if len(values) == 0 {
		return false
	}
	var chars, words int
	seen := make(map[string]struct{}, len(values))
	sentences := false
	for _, v := range values {
		chars += utf8.RuneCountInString(v)
		words += len(strings.Fields(v))
		seen[v] = struct{}{}
		if !sentences && sentenceRe.MatchString(v) {
			sentences = true
		}
	}
	n := float64(len(values))
	return float64(chars)/n > threshold ||
		float64(words)/n > 5 ||
		sentences ||
		float64(len(seen))/n > 0.8
}

func present(c *dataset.Column) []string {
	out := make([]string, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			out = append(out, c.Label(i))
		}
	}
	return out
}

func distinct(c *dataset.Column) map[string]struct{} {
	seen := map[string]struct{}{}
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			seen[c.Label(i)] = struct{}{}
		}
	}
	return seen
}
