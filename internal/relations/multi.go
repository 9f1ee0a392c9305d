package relations

import (
	"fmt"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/stats"
)

func (a *Analyzer) analyzeMulti(sources []*dataset.Column, tgt *dataset.Column, rows []int) (Record, error) {
	var nNumeric int
	for _, s := range sources {
		if Classify(s) == RoleNumeric {
			nNumeric++
		}
	}
	if Classify(tgt) == RoleCategorical {
		return a.categoricalTarget(sources, tgt, rows, nNumeric > 0)
	}
	y := numbers(tgt, rows)
	if nNumeric == len(sources) {
		return multipleRegression(sources, rows, y)
	}
	model, err := covariateModel(sources, rows, y)
	if err != nil {
		return nil, err
	}
	if nNumeric == 0 {
		return &MultiCategoricalToNumeric{CovariateModel: *model}, nil
	}
	return &MixedToNumeric{CovariateModel: *model}, nil
}

func multipleRegression(sources []*dataset.Column, rows []int, y []float64) (Record, error) {
	cols := make([][]float64, len(sources))
	for i, s := range sources {
		cols[i] = numbers(s, rows)
	}
	fit, err := stats.OLS(cols, y)
	if err != nil {
		return nil, wrapStats("multiple regression", err)
	}
	rec := &MultiNumericToNumeric{Intercept: fit.Coef[0], R2: stats.Opt(fit.R2), N: len(y)}
	for i, s := range sources {
		rec.Coefficients = append(rec.Coefficients, SourceCoef{
			Source: s.Name,
			Coef:   stats.Opt(fit.Coef[i+1]),
			PValue: stats.Opt(fit.PValues[i+1]),
		})
	}
	return rec, nil
}

// designBlock is the set of design columns contributed by one source.
type designBlock struct {
	source string
	cols   [][]float64
}

func designBlocks(sources []*dataset.Column, rows []int) []designBlock {
	blocks := make([]designBlock, len(sources))
	for i, s := range sources {
		blocks[i].source = s.Name
		if Classify(s) == RoleNumeric {
			blocks[i].cols = [][]float64{numbers(s, rows)}
			continue
		}
		blocks[i].cols, _ = stats.Dummies(labels(s, rows))
	}
	return blocks
}

func flatten(blocks []designBlock, skip int) [][]float64 {
	var out [][]float64
	for i, b := range blocks {
		if i != skip {
			out = append(out, b.cols...)
		}
	}
	return out
}

// covariateModel fits y on numeric sources plus treatment-coded categorical sources and tests
// each source with a partial F test against the model without it.
func covariateModel(sources []*dataset.Column, rows []int, y []float64) (*CovariateModel, error) {
	blocks := designBlocks(sources, rows)
	full, err := stats.OLS(flatten(blocks, -1), y)
	if err != nil {
		return nil, wrapStats("covariate model", err)
	}
	m := &CovariateModel{
		R2:     stats.Opt(full.R2),
		F:      stats.Opt(full.F),
		PValue: stats.Opt(full.FPValue),
		N:      len(y),
	}
	for i, b := range blocks {
		sp := SourcePValue{Source: b.source}
		if len(b.cols) > 0 {
			reduced := stats.InterceptOnly(y)
			if rest := flatten(blocks, i); len(rest) > 0 {
				reduced, err = stats.OLS(rest, y)
			}
			if err == nil {
				_, p := stats.NestedF(full, reduced)
				sp.PValue = stats.Opt(p)
			}
			err = nil
		}
		m.SourcePValues = append(m.SourcePValues, sp)
	}
	for _, s := range sources {
		if Classify(s) != RoleCategorical {
			continue
		}
		levels, groups := groupBy(labels(s, rows), y)
		sc := SourceCategories{Source: s.Name}
		for _, l := range levels {
			sc.Categories = append(sc.Categories, categoryStat(l, groups[l]))
		}
		m.CategoryStats = append(m.CategoryStats, sc)
	}
	return m, nil
}

func (a *Analyzer) categoricalTarget(sources []*dataset.Column, tgt *dataset.Column, rows []int, mixed bool) (Record, error) {
	target := labels(tgt, rows)
	codes, levels := stats.Encode(target)
	if len(levels) < 2 {
		return nil, insufficient("target variable has only %d category", len(levels))
	}
	n := float64(len(target))
	m := CategoricalTargetModel{TargetLevels: levels, N: len(target)}
	counts := make([]int, len(levels))
	for _, c := range codes {
		counts[int(c)]++
	}
	for i, l := range levels {
		m.TargetDistribution = append(m.TargetDistribution, TargetShare{Category: l, Share: float64(counts[i]) / n})
	}

	var catSources [][]string
	var catNames []string
	for _, s := range sources {
		if Classify(s) == RoleCategorical {
			vals := labels(s, rows)
			catSources = append(catSources, vals)
			catNames = append(catNames, s.Name)
			srcLevels, probs := conditionalProbabilities(vals, target, levels)
			m.Conditional = append(m.Conditional, ConditionalTable{Source: s.Name, SourceLevels: srcLevels, Probabilities: probs})
			continue
		}
		m.NumericEffects = append(m.NumericEffects, numericEffect(s.Name, numbers(s, rows), target, levels))
	}

	if len(catSources) >= 2 {
		// edge-scoped combined key; never written back to the dataset
		combined := make([]string, len(target))
		for i := range combined {
			combined[i] = catSources[0][i] + "_" + catSources[1][i]
		}
		combos, probs := conditionalProbabilities(combined, target, levels)
		ct := &CombinedTable{Sources: [2]string{catNames[0], catNames[1]}, Combinations: combos, Probabilities: probs}
		for j, l := range levels {
			best := CombinedBest{Target: l, Probability: -1}
			for i, c := range combos {
				if probs[i][j] > best.Probability {
					best.Combination, best.Probability = c, probs[i][j]
				}
			}
			ct.Best = append(ct.Best, best)
		}
		m.Combined = ct
	}

	m.Prediction = predictiveQuality(designBlocks(sources, rows), codes, len(levels))

	if mixed {
		return &MixedToCategorical{CategoricalTargetModel: m}, nil
	}
	return &MultiCategoricalToCategorical{CategoricalTargetModel: m}, nil
}

// conditionalProbabilities returns the sorted source levels and P(target level | source level).
func conditionalProbabilities(src, target, targetLevels []string) ([]string, [][]float64) {
	srcLevels := stats.Levels(src)
	observed, _ := crosstab(src, target, srcLevels, targetLevels)
	for _, row := range observed {
		var total float64
		for _, v := range row {
			total += v
		}
		for j := range row {
			row[j] /= total
		}
	}
	return srcLevels, observed
}

func numericEffect(name string, x []float64, target, levels []string) NumericEffect {
	eff := NumericEffect{Source: name}
	_, groups := groupBy(target, x)
	var valid [][]float64
	for _, l := range levels {
		g := groups[l]
		eff.Stats = append(eff.Stats, categoryStat(l, g))
		if len(g) > 1 {
			valid = append(valid, g)
		}
	}
	if len(valid) <= 1 {
		eff.Error = "not enough valid groups for ANOVA"
		return eff
	}
	res, err := stats.OneWay(valid)
	if err != nil {
		eff.Error = fmt.Sprintf("ANOVA failed: %v", err)
		return eff
	}
	eff.F, eff.PValue = stats.Opt(res.F), stats.Opt(res.P)
	return eff
}
