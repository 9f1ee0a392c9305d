// Package report renders relation and profile results as plain text and as a structured
// document.
package report

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dagloom-cli/internal/relations"
)

// Options controls wording thresholds and table caps.
type Options struct {
	// Alpha is the significance level for "statistically significant" wording.
	Alpha float64
	// CategoryCap bounds category-statistics tables; SignificantCap bounds significant-category lists.
	CategoryCap    int
	SignificantCap int
	// A conditional probability is "predictive" when it exceeds LiftThreshold times the base rate.
	LiftThreshold float64
}

// DefaultOptions returns the standard report settings.
func DefaultOptions() Options {
	return Options{Alpha: 0.05, CategoryCap: 15, SignificantCap: 10, LiftThreshold: 1.5}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Alpha <= 0 {
		o.Alpha = def.Alpha
	}
	if o.CategoryCap <= 0 {
		o.CategoryCap = def.CategoryCap
	}
	if o.SignificantCap <= 0 {
		o.SignificantCap = def.SignificantCap
	}
	if o.LiftThreshold <= 0 {
		o.LiftThreshold = def.LiftThreshold
	}
	return o
}

// Lift is prob divided by the base rate; +Inf when the base rate is zero.
func Lift(prob, base float64) float64 {
	if base <= 0 {
		return math.Inf(1)
	}
	return prob / base
}

// AccuracyBucket describes a predictive accuracy in words.
func AccuracyBucket(acc float64) string {
	switch {
	case acc > 0.8:
		return "excellent"
	case acc > 0.7:
		return "good"
	case acc > 0.6:
		return "moderate"
	default:
		return "poor"
	}
}

// AssociationStrength describes a Cramer's V value in words; nil is "weak".
func AssociationStrength(v *float64) string {
	switch {
	case v == nil:
		return "weak"
	case *v > 0.3:
		return "strong"
	case *v > 0.1:
		return "moderate"
	default:
		return "weak"
	}
}

// Predictive is a source category whose conditional probability for a target category
// clears the lift threshold.
type Predictive struct {
	Source      string   `json:"source"`
	Category    string   `json:"category"`
	Target      string   `json:"target"`
	Probability float64  `json:"probability"`
	Lift        *float64 `json:"lift"`
}

// mostPredictive takes, for each target category, the source category with the highest
// conditional probability and keeps it when it beats threshold times the base rate.
func mostPredictive(m *relations.CategoricalTargetModel, t relations.ConditionalTable, threshold float64) []Predictive {
	var out []Predictive
	for j, target := range m.TargetLevels {
		best := -1
		for i := range t.SourceLevels {
			if best < 0 || t.Probabilities[i][j] > t.Probabilities[best][j] {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		p, base := t.Probabilities[best][j], m.BaseRate(target)
		if p > base*threshold {
			out = append(out, Predictive{
				Source:      t.Source,
				Category:    t.SourceLevels[best],
				Target:      target,
				Probability: p,
				Lift:        finite(Lift(p, base)),
			})
		}
	}
	return out
}

func combinations(m *relations.CategoricalTargetModel) []Predictive {
	if m.Combined == nil {
		return nil
	}
	out := make([]Predictive, 0, len(m.Combined.Best))
	for _, b := range m.Combined.Best {
		out = append(out, Predictive{
			Source:      m.Combined.Sources[0] + "_" + m.Combined.Sources[1],
			Category:    b.Combination,
			Target:      b.Target,
			Probability: b.Probability,
			Lift:        finite(Lift(b.Probability, m.BaseRate(b.Target))),
		})
	}
	return out
}

// pctDiff is the relative deviation of mean from total in percent; +Inf when total is zero.
func pctDiff(mean, total float64) float64 {
	if total == 0 {
		return math.Inf(1)
	}
	return (mean - total) / total * 100
}

// rankedCategories caps the table at limit rows, ranking by count times absolute percent
// deviation. The second result is true when rows were dropped.
func rankedCategories(stats []relations.CategoryStat, total float64, limit int) ([]relations.CategoryStat, bool) {
	if len(stats) <= limit {
		return stats, false
	}
	ranked := append([]relations.CategoryStat(nil), stats...)
	score := func(c relations.CategoryStat) float64 {
		return float64(c.Count) * math.Abs(pctDiff(c.Mean, total))
	}
	sort.SliceStable(ranked, func(i, j int) bool { return score(ranked[i]) > score(ranked[j]) })
	return ranked[:limit], true
}

// weightedMean is the count-weighted mean over category rows.
func weightedMean(stats []relations.CategoryStat) float64 {
	var sum float64
	var n int
	for _, c := range stats {
		sum += c.Mean * float64(c.Count)
		n += c.Count
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// rankedConditional caps a conditional-probability table at limit rows, ranking source levels
// by their largest absolute departure from the target base rates. It returns row indices.
func rankedConditional(m *relations.CategoricalTargetModel, t relations.ConditionalTable, limit int) ([]int, bool) {
	idx := make([]int, len(t.SourceLevels))
	for i := range idx {
		idx[i] = i
	}
	if len(idx) <= limit {
		return idx, false
	}
	score := make([]float64, len(idx))
	for i, probs := range t.Probabilities {
		for j, p := range probs {
			if j < len(m.TargetLevels) {
				score[i] = math.Max(score[i], math.Abs(p-m.BaseRate(m.TargetLevels[j])))
			}
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return score[idx[a]] > score[idx[b]] })
	return idx[:limit], true
}

func rankedSignificant(sig []relations.SignificantCategory, total float64, limit int) ([]relations.SignificantCategory, bool) {
	if len(sig) <= limit {
		return sig, false
	}
	ranked := append([]relations.SignificantCategory(nil), sig...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Mean-total) > math.Abs(ranked[j].Mean-total)
	})
	return ranked[:limit], true
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
