package profile

import "github.com/KaramelBytes/dagloom-cli/internal/stats"

// Profile is the per-column description. The concrete types below are the only
// implementations.
type Profile interface {
	Kind() Type
	base() *Base
}

// Base carries the fields every profile shares. Count is the number of non-missing cells.
type Base struct {
	Type              Type    `json:"type"`
	Count             int     `json:"count"`
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
}

func (b *Base) Kind() Type  { return b.Type }
func (b *Base) base() *Base { return b }

// Unknown describes a column with no values at all.
type Unknown struct {
	Base
	Analysis string `json:"analysis"`
}

type NormalityTest struct {
	Test string `json:"test"`
	stats.Normality
}

type Outliers struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// Continuous describes a numeric column. Skewness and Kurtosis are nil when not calculable.
type Continuous struct {
	Base
	Min       float64          `json:"min"`
	Max       float64          `json:"max"`
	Mean      float64          `json:"mean"`
	Median    float64          `json:"median"`
	Std       *float64         `json:"std"`
	Q1        float64          `json:"q1"`
	Q3        float64          `json:"q3"`
	IQR       float64          `json:"iqr"`
	Variance  *float64         `json:"variance"`
	Skewness  *float64         `json:"skewness"`
	Kurtosis  *float64         `json:"kurtosis"`
	Normality *NormalityTest   `json:"normality_test,omitempty"`
	Outliers  Outliers         `json:"outliers"`
	Histogram *stats.Histogram `json:"histogram,omitempty"`
}

// ValueShare is a value with its count and rounded percentage of non-missing cells.
type ValueShare struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Entropy struct {
	Value       float64 `json:"value"`
	MaxPossible float64 `json:"max_possible"`
	Normalized  float64 `json:"normalized"`
}

// Categorical describes a column with a bounded set of values. Categories is ordered by
// descending count; when Truncated it holds only the top entries of TotalCategories.
type Categorical struct {
	Base
	UniqueValues    int          `json:"unique_values"`
	MostCommon      *ValueShare  `json:"most_common,omitempty"`
	LeastCommon     *ValueShare  `json:"least_common,omitempty"`
	Entropy         Entropy      `json:"entropy"`
	Categories      []ValueShare `json:"categories"`
	TotalCategories int          `json:"total_categories"`
	Truncated       bool         `json:"truncated"`
}

type TextLength struct {
	MinChars int     `json:"min_chars"`
	MaxChars int     `json:"max_chars"`
	AvgChars float64 `json:"avg_chars"`
	MinWords int     `json:"min_words"`
	MaxWords int     `json:"max_words"`
	AvgWords float64 `json:"avg_words"`
}

type Patterns struct {
	ContainsEmails       bool `json:"contains_emails"`
	ContainsURLs         bool `json:"contains_urls"`
	ContainsNumbers      bool `json:"contains_numbers"`
	ContainsSpecialChars bool `json:"contains_special_chars"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type WordFrequency struct {
	TotalWords  int         `json:"total_words"`
	UniqueWords int         `json:"unique_words"`
	TopWords    []WordCount `json:"top_words"`
}

// String describes a free-text column.
type String struct {
	Base
	UniqueValues    int            `json:"unique_values"`
	UniquenessRatio float64        `json:"uniqueness_ratio"`
	TextLength      TextLength     `json:"text_length"`
	Patterns        Patterns       `json:"patterns"`
	WordFrequency   *WordFrequency `json:"word_frequency,omitempty"`
	SampleValues    []string       `json:"sample_values"`
}

type Boolean struct {
	Base
	TrueCount       int     `json:"true_count"`
	FalseCount      int     `json:"false_count"`
	TruePercentage  float64 `json:"true_percentage"`
	FalsePercentage float64 `json:"false_percentage"`
}

// TimeDistribution counts values by calendar year, month (1-12) and weekday (Monday = 0).
type TimeDistribution struct {
	Years    map[string]int `json:"years"`
	Months   map[string]int `json:"months"`
	Weekdays map[string]int `json:"weekdays"`
}

type Datetime struct {
	Base
	Min          string           `json:"min"`
	Max          string           `json:"max"`
	RangeDays    int              `json:"range_days"`
	Distribution TimeDistribution `json:"distribution"`
}
