package stats

import (
	"fmt"
	"math"
)

// ANOVA is a one-way analysis of variance result.
type ANOVA struct {
	F         float64
	P         float64
	DFBetween int
	DFWithin  int
}

// OneWay tests whether the group means differ. Every group must be non-empty and at least two
// groups are required. Zero within-group variance with differing means gives F=+Inf and P=0.
func OneWay(groups [][]float64) (ANOVA, error) {
	if len(groups) < 2 {
		return ANOVA{}, fmt.Errorf("%w: need at least two groups, got %d", ErrInsufficient, len(groups))
	}
	var total float64
	n := 0
	for i, g := range groups {
		if len(g) == 0 {
			return ANOVA{}, fmt.Errorf("%w: group %d is empty", ErrInsufficient, i)
		}
		for _, v := range g {
			total += v
		}
		n += len(g)
	}
	k := len(groups)
	res := ANOVA{DFBetween: k - 1, DFWithin: n - k}
	if res.DFWithin <= 0 {
		return ANOVA{}, fmt.Errorf("%w: %d observations in %d groups", ErrInsufficient, n, k)
	}
	grand := total / float64(n)
	var ssb, ssw float64
	for _, g := range groups {
		m := Mean(g)
		d := m - grand
		ssb += float64(len(g)) * d * d
		for _, v := range g {
			e := v - m
			ssw += e * e
		}
	}
	switch {
	case ssw > 0:
		res.F = (ssb / float64(res.DFBetween)) / (ssw / float64(res.DFWithin))
	case ssb > 0:
		res.F = math.Inf(1)
	default:
		res.F = math.NaN()
	}
	res.P = fUpper(res.F, res.DFBetween, res.DFWithin)
	return res, nil
}
