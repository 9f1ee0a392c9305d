package relations

import (
	"math"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/stats"
)

func (a *Analyzer) analyzeSingle(src, tgt *dataset.Column, rows []int) (Record, error) {
	switch {
	case Classify(src) == RoleNumeric && Classify(tgt) == RoleNumeric:
		return regression(numbers(src, rows), numbers(tgt, rows))
	case Classify(tgt) == RoleNumeric:
		return a.groupComparison(labels(src, rows), numbers(tgt, rows))
	case Classify(src) == RoleCategorical:
		return contingency(labels(src, rows), labels(tgt, rows))
	default:
		return encodedFit(numbers(src, rows), labels(tgt, rows))
	}
}

func regression(x, y []float64) (Record, error) {
	fit, err := stats.OLS([][]float64{x}, y)
	if err != nil {
		return nil, wrapStats("linear regression", err)
	}
	return &NumericToNumeric{
		Coef:      fit.Coef[1],
		Intercept: fit.Coef[0],
		R2:        stats.Opt(fit.R2),
		PValue:    stats.Opt(fit.PValues[1]),
		N:         len(y),
	}, nil
}

func (a *Analyzer) groupComparison(keys []string, y []float64) (Record, error) {
	levels, groups := groupBy(keys, y)
	if len(levels) <= 1 {
		return nil, insufficient("need at least two groups for ANOVA")
	}
	var valid [][]float64
	for _, l := range levels {
		if len(groups[l]) > 1 {
			valid = append(valid, groups[l])
		}
	}
	if len(valid) <= 1 {
		return nil, insufficient("need at least two groups with multiple data points for ANOVA")
	}
	res, err := stats.OneWay(valid)
	if err != nil {
		return nil, wrapStats("ANOVA", err)
	}

	rec := &CategoricalToNumeric{
		F:         stats.Opt(res.F),
		PValue:    stats.Opt(res.P),
		TotalMean: stats.Mean(y),
		TotalStd:  stats.Opt(stats.StdDev(y)),
		N:         len(y),
	}
	threshold := math.Inf(1)
	if rec.TotalStd != nil {
		threshold = a.opt.SignificanceStdFactor * *rec.TotalStd
	}
	for _, l := range levels {
		cs := categoryStat(l, groups[l])
		rec.Categories = append(rec.Categories, cs)
		if math.Abs(cs.Mean-rec.TotalMean) > threshold {
			dir := "lower"
			if cs.Mean > rec.TotalMean {
				dir = "higher"
			}
			rec.Significant = append(rec.Significant, SignificantCategory{Category: l, Mean: cs.Mean, Direction: dir})
		}
	}
	return rec, nil
}

func categoryStat(category string, vals []float64) CategoryStat {
	s := stats.Describe(vals)
	return CategoryStat{
		Category: category,
		Count:    s.Count,
		Mean:     s.Mean,
		Std:      stats.Opt(s.Std),
		Min:      s.Min,
		Max:      s.Max,
	}
}

func contingency(src, tgt []string) (Record, error) {
	srcLevels, tgtLevels := stats.Levels(src), stats.Levels(tgt)
	if len(srcLevels) < 2 || len(tgtLevels) < 2 {
		return nil, insufficient("contingency table needs at least 2x2 dimensions")
	}
	observed, counts := crosstab(src, tgt, srcLevels, tgtLevels)
	chi, err := stats.Independence(observed)
	if err != nil {
		return nil, wrapStats("chi-square test", err)
	}
	n := len(src)
	rec := &CategoricalToCategorical{
		Chi2:         chi.Stat,
		PValue:       chi.P,
		DF:           chi.DF,
		CramersV:     stats.Opt(stats.CramersV(chi.Stat, n, len(srcLevels), len(tgtLevels))),
		SourceLevels: srcLevels,
		TargetLevels: tgtLevels,
		Observed:     counts,
		Expected:     chi.Expected,
		N:            n,
	}

	best, bestP := -1.0, -1.0
	for i, row := range observed {
		var rowTotal float64
		for _, v := range row {
			rowTotal += v
		}
		for j, o := range row {
			e := chi.Expected[i][j]
			if contrib := (o - e) * (o - e) / e; contrib > best {
				best = contrib
				rec.Strongest = Cell{Source: srcLevels[i], Target: tgtLevels[j]}
				rec.StrongestObserved = counts[i][j]
				rec.StrongestExpected = e
			}
			if rowTotal > 0 {
				if p := o / rowTotal; p > bestP {
					bestP = p
					rec.MaxConditional = Cell{Source: srcLevels[i], Target: tgtLevels[j]}
					rec.MaxConditionalP = p
				}
			}
		}
	}
	return rec, nil
}

func crosstab(src, tgt, srcLevels, tgtLevels []string) ([][]float64, [][]int) {
	si, ti := index(srcLevels), index(tgtLevels)
	observed := make([][]float64, len(srcLevels))
	counts := make([][]int, len(srcLevels))
	for i := range observed {
		observed[i] = make([]float64, len(tgtLevels))
		counts[i] = make([]int, len(tgtLevels))
	}
	for k := range src {
		i, j := si[src[k]], ti[tgt[k]]
		observed[i][j]++
		counts[i][j]++
	}
	return observed, counts
}

func index(levels []string) map[string]int {
	m := make(map[string]int, len(levels))
	for i, l := range levels {
		m[l] = i
	}
	return m
}

// encodedFit regresses the lexicographic label code of the target on the source. It is an
// indicative association, not a classifier.
func encodedFit(x []float64, tgt []string) (Record, error) {
	codes, levels := stats.Encode(tgt)
	if len(levels) <= 1 {
		return nil, insufficient("target variable has only %d category", len(levels))
	}
	fit, err := stats.OLS([][]float64{x}, codes)
	if err != nil {
		return nil, wrapStats("linear fit on encoded target", err)
	}
	return &NumericToCategorical{
		Coef:      fit.Coef[1],
		Intercept: fit.Coef[0],
		Encoding:  levels,
		N:         len(x),
	}, nil
}
