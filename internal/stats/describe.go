// Package stats holds the numeric kernels used by relation analysis and column profiling.
// Functions take plain float64 slices with nulls already removed.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficient reports too few observations, groups, or categories for a test.
	ErrInsufficient = errors.New("insufficient data")
	// ErrSingular reports a rank-deficient or numerically singular design.
	ErrSingular = errors.New("singular design matrix")
	// ErrNotBinary reports a classification target that is not coded 0/1 with both classes present.
	ErrNotBinary = errors.New("target is not binary")
	// ErrNoConvergence reports an iterative fit that did not converge.
	ErrNoConvergence = errors.New("fit did not converge")
)

// Summary is the descriptive summary of a sample.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Q1     float64
	Median float64
	Q3     float64
}

// Describe summarizes x. Std is the sample standard deviation (n-1) and is NaN below two values.
func Describe(x []float64) Summary {
	s := Summary{Count: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Max, s.Q1, s.Median, s.Q3 = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sorted := Sorted(x)
	s.Min, s.Max = sorted[0], sorted[len(sorted)-1]
	s.Mean = stat.Mean(x, nil)
	s.Std = StdDev(x)
	s.Q1 = Quantile(sorted, 0.25)
	s.Median = Quantile(sorted, 0.5)
	s.Q3 = Quantile(sorted, 0.75)
	return s
}

// Mean returns NaN for an empty sample.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// StdDev is the sample standard deviation; NaN below two values.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// Skewness is the bias-corrected sample skewness; NaN when undefined.
func Skewness(x []float64) float64 {
	if len(x) < 3 {
		return math.NaN()
	}
	return stat.Skew(x, nil)
}

// Kurtosis is the bias-corrected excess kurtosis; NaN when undefined.
func Kurtosis(x []float64) float64 {
	if len(x) < 4 {
		return math.NaN()
	}
	return stat.ExKurtosis(x, nil)
}

// Sorted returns an ascending copy of x.
func Sorted(x []float64) []float64 {
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	return cp
}

// Quantile interpolates linearly between order statistics of an ascending slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Opt converts a value to the "not calculable" marker (nil) when it is NaN or infinite.
func Opt(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
