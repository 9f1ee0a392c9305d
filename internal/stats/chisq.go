package stats

import (
	"fmt"
	"math"
)

// ChiSquare is a chi-square test of independence on a contingency table.
type ChiSquare struct {
	Stat     float64
	P        float64
	DF       int
	Expected [][]float64
}

// Independence runs the chi-square independence test on observed counts (rows x cols).
// Tables with one degree of freedom get Yates' continuity correction.
func Independence(observed [][]float64) (ChiSquare, error) {
	r := len(observed)
	if r < 2 || len(observed[0]) < 2 {
		return ChiSquare{}, fmt.Errorf("%w: contingency table needs at least 2x2 dimensions", ErrInsufficient)
	}
	c := len(observed[0])
	rowSum := make([]float64, r)
	colSum := make([]float64, c)
	var total float64
	for i, row := range observed {
		if len(row) != c {
			return ChiSquare{}, fmt.Errorf("chi-square: ragged table at row %d", i)
		}
		for j, v := range row {
			rowSum[i] += v
			colSum[j] += v
			total += v
		}
	}
	if total == 0 {
		return ChiSquare{}, fmt.Errorf("%w: empty contingency table", ErrInsufficient)
	}
	res := ChiSquare{DF: (r - 1) * (c - 1), Expected: make([][]float64, r)}
	for i := range observed {
		res.Expected[i] = make([]float64, c)
		for j := range observed[i] {
			e := rowSum[i] * colSum[j] / total
			if e == 0 {
				return ChiSquare{}, fmt.Errorf("%w: zero expected frequency at (%d, %d)", ErrInsufficient, i, j)
			}
			res.Expected[i][j] = e
		}
	}
	for i, row := range observed {
		for j, o := range row {
			e := res.Expected[i][j]
			d := o - e
			if res.DF == 1 {
				adj := math.Min(0.5, math.Abs(d))
				if d > 0 {
					d -= adj
				} else {
					d += adj
				}
			}
			res.Stat += d * d / e
		}
	}
	res.P = chiUpper(res.Stat, res.DF)
	return res, nil
}

// CramersV normalizes a chi-square statistic by sample size and the smaller table dimension.
// It returns NaN when the denominator is zero.
func CramersV(chi2 float64, n, rows, cols int) float64 {
	den := float64(n) * float64(min(rows, cols)-1)
	if den <= 0 {
		return math.NaN()
	}
	return math.Sqrt(chi2 / den)
}
