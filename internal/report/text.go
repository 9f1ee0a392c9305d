package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dagloom-cli/internal/relations"
)

const notCalculable = "Not calculable"

// Renderer turns analysis results into text and documents.
type Renderer struct {
	opt Options
}

// NewRenderer fills zero options from DefaultOptions.
func NewRenderer(opt Options) *Renderer {
	return &Renderer{opt: opt.withDefaults()}
}

type lines struct{ out []string }

func (l *lines) add(format string, args ...any) { l.out = append(l.out, fmt.Sprintf(format, args...)) }

func (l *lines) value(label string, v *float64) {
	if v == nil {
		l.add("%15s: %s", label, notCalculable)
		return
	}
	l.add("%15s: %.4f", label, *v)
}

func (l *lines) table(header string) {
	l.out = append(l.out, header, strings.Repeat("-", len(header)))
}

func fmtOpt(v *float64, format string) string {
	if v == nil {
		return notCalculable
	}
	return fmt.Sprintf(format, *v)
}

func stdCell(v *float64, width int) string {
	if v == nil {
		return fmt.Sprintf("%*s", width, "N/A")
	}
	return fmt.Sprintf("%*.4f", width, *v)
}

func (r *Renderer) significance(p *float64) string {
	if p != nil && *p < r.opt.Alpha {
		return "significant"
	}
	return "not significant"
}

// Text renders one section per relation in result order followed by the error log.
// Identical results render identical text.
func (r *Renderer) Text(res *relations.Result) string {
	l := &lines{}
	if len(res.Relations) == 0 {
		l.add("No valid relationships found!")
	}
	for _, rel := range res.Relations {
		l.add("\nRelationship %s", rel.Key)
		l.add("Type: %s", rel.Record.Type())
		r.section(l, rel)
	}
	if len(res.Errors) > 0 {
		l.add("\n\nErrors encountered during analysis:")
		for i, e := range res.Errors {
			l.add("%d. %s", i+1, e)
		}
	}
	return strings.Join(l.out, "\n")
}

func (r *Renderer) section(l *lines, rel relations.Relation) {
	switch rec := rel.Record.(type) {
	case *relations.NumericToNumeric:
		l.add("%15s: %.4f", "coef", rec.Coef)
		l.add("%15s: %.4f", "intercept", rec.Intercept)
		l.value("r2", rec.R2)
		l.value("p_value", rec.PValue)
	case *relations.CategoricalToNumeric:
		r.groupComparison(l, rec)
	case *relations.CategoricalToCategorical:
		r.contingency(l, rel.Edge.Source(), rel.Edge.Target, rec)
	case *relations.NumericToCategorical:
		l.add("%15s: %.4f", "coef", rec.Coef)
		l.add("%15s: %.4f", "intercept", rec.Intercept)
		enc := make([]string, len(rec.Encoding))
		for i, c := range rec.Encoding {
			enc[i] = fmt.Sprintf("%d=%s", i, c)
		}
		l.add("%15s: %s", "encoding", strings.Join(enc, ", "))
	case *relations.MultiNumericToNumeric:
		l.value("R-squared", rec.R2)
		l.add("%15s: %.4f", "Intercept", rec.Intercept)
		l.add("\nCoefficients and p-values:")
		for _, c := range rec.Coefficients {
			l.add("%15s: %s (p=%s)", c.Source, fmtOpt(c.Coef, "%.4f"), fmtOpt(c.PValue, "%.4f"))
		}
	case *relations.MultiCategoricalToNumeric:
		r.covariate(l, &rec.CovariateModel)
	case *relations.MixedToNumeric:
		r.covariate(l, &rec.CovariateModel)
	case *relations.MixedToCategorical:
		r.categoricalTarget(l, rel.Edge.Target, &rec.CategoricalTargetModel)
	case *relations.MultiCategoricalToCategorical:
		r.categoricalTarget(l, rel.Edge.Target, &rec.CategoricalTargetModel)
	}
}

func (r *Renderer) groupComparison(l *lines, rec *relations.CategoricalToNumeric) {
	if rec.F != nil {
		l.value("f_value", rec.F)
	}
	if rec.PValue != nil {
		l.value("p_value", rec.PValue)
	}
	l.add("\nThe relationship is statistically %s (p=%s).", r.significance(rec.PValue), fmtOpt(rec.PValue, "%.4f"))

	l.add("\nCategory Statistics:")
	l.table(fmt.Sprintf("%15s | %8s | %10s | %10s | %15s", "Category", "Count", "Mean", "Std Dev", "% Diff from Mean"))
	shown, capped := rankedCategories(rec.Categories, rec.TotalMean, r.opt.CategoryCap)
	if capped {
		l.add("Note: Showing only the %d most significant categories out of %d total categories.", len(shown), len(rec.Categories))
	}
	for _, c := range shown {
		l.add("%15s | %8d | %10.4f | %s | %15.2f%%", c.Category, c.Count, c.Mean, stdCell(c.Std, 10), pctDiff(c.Mean, rec.TotalMean))
	}

	if len(rec.Significant) == 0 {
		return
	}
	l.add("\nCategories with Significant Differences:")
	sig, capped := rankedSignificant(rec.Significant, rec.TotalMean, r.opt.SignificantCap)
	if capped {
		l.add("Note: Showing only the %d most significant categories out of %d significant categories.", len(sig), len(rec.Significant))
	}
	for _, s := range sig {
		l.add("- %s: %.4f (%s than overall mean of %.4f)", s.Category, s.Mean, s.Direction, rec.TotalMean)
	}
}

func (r *Renderer) contingency(l *lines, src, tgt string, rec *relations.CategoricalToCategorical) {
	l.add("%15s: %.4f", "chi2", rec.Chi2)
	l.add("%15s: %.4f", "p_value", rec.PValue)
	if rec.CramersV != nil {
		l.value("cramers_v", rec.CramersV)
	}
	p := rec.PValue
	l.add("\nThe association is statistically %s (p=%.4f) and %s (Cramer's V=%s).",
		r.significance(&p), rec.PValue, AssociationStrength(rec.CramersV), fmtOpt(rec.CramersV, "%.4f"))

	l.add("\nStrongest association: When %s is '%s', %s is most likely to be '%s'", src, rec.Strongest.Source, tgt, rec.Strongest.Target)
	l.add("  Observed: %d, Expected: %.2f", rec.StrongestObserved, rec.StrongestExpected)
	if rec.MaxConditionalP > 0 {
		l.add("\nHighest conditional probability: P(%s='%s' | %s='%s') = %.4f",
			tgt, rec.MaxConditional.Target, src, rec.MaxConditional.Source, rec.MaxConditionalP)
	}
}

func (r *Renderer) covariate(l *lines, m *relations.CovariateModel) {
	l.value("R-squared", m.R2)
	l.value("F-value", m.F)
	l.value("Overall p-value", m.PValue)
	l.add("\nIndividual p-values:")
	for _, sp := range m.SourcePValues {
		l.value(sp.Source, sp.PValue)
	}
	if len(m.CategoryStats) == 0 {
		return
	}
	l.add("\nCategory Statistics:")
	for _, sc := range m.CategoryStats {
		l.add("\nVariable: %s", sc.Source)
		l.table(fmt.Sprintf("%15s | %8s | %10s | %10s", "Category", "Count", "Mean", "Std Dev"))
		shown, capped := rankedCategories(sc.Categories, weightedMean(sc.Categories), r.opt.CategoryCap)
		if capped {
			l.add("Note: Showing only the %d most significant categories out of %d total categories.", len(shown), len(sc.Categories))
		}
		for _, c := range shown {
			l.add("%15s | %8d | %10.4f | %s", c.Category, c.Count, c.Mean, stdCell(c.Std, 10))
		}
	}
}

func (r *Renderer) categoricalTarget(l *lines, tgt string, m *relations.CategoricalTargetModel) {
	l.add("\nTarget Variable Distribution:")
	for _, s := range m.TargetDistribution {
		l.add("%15s: %.4f (%.1f%%)", s.Category, s.Share, s.Share*100)
	}

	if len(m.Conditional) > 0 {
		l.add("\nConditional Probabilities:")
	}
	for _, t := range m.Conditional {
		l.add("\nVariable: %s", t.Source)
		l.table(row(append([]string{"Category"}, m.TargetLevels...)))
		rows, capped := rankedConditional(m, t, r.opt.CategoryCap)
		if capped {
			l.add("Note: Showing only the %d most informative categories out of %d total categories.", len(rows), len(t.SourceLevels))
		}
		for _, i := range rows {
			cells := []string{t.SourceLevels[i]}
			for _, p := range t.Probabilities[i] {
				cells = append(cells, fmt.Sprintf("%.4f", p))
			}
			l.add("%s", row(cells))
		}
		if preds := mostPredictive(m, t, r.opt.LiftThreshold); len(preds) > 0 {
			l.add("\nMost predictive categories:")
			for _, p := range preds {
				l.add("- When %s is '%s', %s is '%s' with probability %.4f (%s base rate)",
					t.Source, p.Category, tgt, p.Target, p.Probability, liftText(p.Lift))
			}
		}
	}

	if m.Combined != nil {
		l.add("\nCombined Effect of %s and %s:", m.Combined.Sources[0], m.Combined.Sources[1])
		l.add("\nMost significant combinations:")
		for _, p := range combinations(m) {
			l.add("- For %s='%s': Combination '%s' with probability %.4f (%s base rate)",
				tgt, p.Target, p.Category, p.Probability, liftText(p.Lift))
		}
	}

	if len(m.NumericEffects) > 0 {
		l.add("\nNumerical Variable Effects:")
	}
	for _, eff := range m.NumericEffects {
		l.add("\nVariable: %s", eff.Source)
		if eff.Error != "" {
			l.add("Error: %s", eff.Error)
			continue
		}
		l.add("F-value: %s, p-value: %s", fmtOpt(eff.F, "%.4f"), fmtOpt(eff.PValue, "%.4f"))
		l.add("The effect is statistically %s", r.significance(eff.PValue))
		l.add("\nStatistics by target category:")
		l.table(fmt.Sprintf("%20s | %8s | %10s | %10s", "Target Category", "Count", "Mean", "Std Dev"))
		shown, capped := rankedCategories(eff.Stats, weightedMean(eff.Stats), r.opt.CategoryCap)
		if capped {
			l.add("Note: Showing only the %d most significant categories out of %d total categories.", len(shown), len(eff.Stats))
		}
		for _, c := range shown {
			l.add("%20s | %8d | %10.4f | %s", c.Category, c.Count, c.Mean, stdCell(c.Std, 10))
		}
	}

	l.add("\nOverall Prediction Quality:")
	q := m.Prediction
	if q.Error != "" {
		l.add("Error: %s", q.Error)
		return
	}
	l.add("%15s: %.4f", "accuracy", q.Accuracy)
	if q.PseudoR2 != nil {
		l.value("pseudo_r2", q.PseudoR2)
	}
	if q.R2 != nil {
		l.value("r2", q.R2)
	}
	l.add("%15s: %s", "model", q.ModelType)
	l.add("\nThe combined predictive power of all variables is %s (accuracy: %.4f)", AccuracyBucket(q.Accuracy), q.Accuracy)
}

func row(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("%15s", c)
	}
	return strings.Join(parts, " | ")
}

func liftText(lift *float64) string {
	if lift == nil {
		return "infx"
	}
	return fmt.Sprintf("%.2fx", *lift)
}
