package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram holds bin counts and the len(Counts)+1 bin edges.
type Histogram struct {
	Counts []int     `json:"counts"`
	Edges  []float64 `json:"bin_edges"`
}

// NewHistogram bins x with the smaller of the Sturges and Freedman-Diaconis widths, never
// more than MaxBins bins. The last bin is closed on the right.
func NewHistogram(x []float64) Histogram {
	if len(x) == 0 {
		return Histogram{}
	}
	sorted := Sorted(x)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	bins := autoBins(sorted, hi-lo)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	raw := stat.Histogram(nil, dividers, sorted, nil)
	counts := make([]int, len(raw))
	for i, c := range raw {
		counts[i] = int(c)
	}
	return Histogram{Counts: counts, Edges: edges}
}

// MaxBins bounds the histogram size; a Freedman-Diaconis count above it falls back to Sturges.
const MaxBins = 1000

func autoBins(sorted []float64, span float64) int {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 1
	}
	n := float64(len(sorted))
	sturgesBins := int(math.Ceil(math.Log2(n) + 1))
	sturges := span / (math.Log2(n) + 1)
	iqr := Quantile(sorted, 0.75) - Quantile(sorted, 0.25)
	fd := 2 * iqr * math.Pow(n, -1.0/3)
	width := sturges
	if fd > 0 {
		width = math.Min(fd, sturges)
	}
	if width <= 0 {
		return 1
	}
	bins := math.Ceil(span / width)
	if bins > MaxBins {
		bins = float64(sturgesBins)
	}
	return min(MaxBins, max(1, int(bins)))
}
