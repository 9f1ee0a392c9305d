package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// studentTwoSided is the two-sided p-value of a t statistic.
func studentTwoSided(t float64, df int) float64 {
	if df <= 0 || math.IsNaN(t) {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	d := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return 2 * d.Survival(math.Abs(t))
}

// fUpper is P(F > f) for an F(d1, d2) variate.
func fUpper(f float64, d1, d2 int) float64 {
	if d1 <= 0 || d2 <= 0 || math.IsNaN(f) {
		return math.NaN()
	}
	if math.IsInf(f, 1) {
		return 0
	}
	if f <= 0 {
		return 1
	}
	return distuv.F{D1: float64(d1), D2: float64(d2)}.Survival(f)
}

// chiUpper is P(X > x) for a chi-square variate with k degrees of freedom.
func chiUpper(x float64, k int) float64 {
	if k <= 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return 0
	}
	if x <= 0 {
		return 1
	}
	return distuv.ChiSquared{K: float64(k)}.Survival(x)
}
