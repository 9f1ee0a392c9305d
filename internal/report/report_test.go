package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/edges"
	"github.com/KaramelBytes/dagloom-cli/internal/profile"
	"github.com/KaramelBytes/dagloom-cli/internal/relations"
)

func ptr(v float64) *float64 { return &v }

func scenario(t *testing.T) (*dataset.Dataset, *relations.Result) {
	t.Helper()
	dose := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	noise := []float64{0.1, -0.1, 0.2, -0.2, 0.1, 0, -0.1, 0.1}
	outcome := make([]float64, len(dose))
	for i := range dose {
		outcome[i] = 2*dose[i] + noise[i]
	}
	region := []string{"A", "B", "A", "B", "A", "B", "A", "B"}
	ds := dataset.MustNew("trial",
		dataset.NewNumeric("dose", dose),
		dataset.NewNumeric("outcome", outcome),
		dataset.NewText("region", region, nil),
	)
	res := relations.NewAnalyzer(relations.DefaultOptions(), nil).Analyze(ds, []edges.Edge{
		edges.Single("dose", "outcome"),
		edges.Single("region", "outcome"),
	})
	require.Empty(t, res.Errors)
	return ds, res
}

func TestTextScenarioHeaders(t *testing.T) {
	_, res := scenario(t)
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.Contains(t, text, "\nRelationship dose -> outcome\nType: numeric->numeric\n")
	assert.Contains(t, text, "\nRelationship region -> outcome\nType: categorical->numeric\n")
	assert.Contains(t, text, "           coef: ")
	assert.Contains(t, text, "Category Statistics:")
	assert.NotContains(t, text, "Errors encountered during analysis")
	assert.Less(t, strings.Index(text, "dose -> outcome"), strings.Index(text, "region -> outcome"))
}

func TestTextDeterministic(t *testing.T) {
	_, res := scenario(t)
	r := NewRenderer(DefaultOptions())
	assert.Equal(t, r.Text(res), r.Text(res))
}

func TestTextEmptyWithErrors(t *testing.T) {
	ds := dataset.MustNew("d", dataset.NewNumeric("a", []float64{1, 2, 3}))
	res := relations.NewAnalyzer(relations.DefaultOptions(), nil).Analyze(ds, []edges.Edge{
		edges.Single("a", "b"),
		edges.Single("c", "a"),
	})
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.True(t, strings.HasPrefix(text, "No valid relationships found!"))
	assert.Contains(t, text, "\n\n\nErrors encountered during analysis:\n1. Error analyzing a -> b: missing columns: b\n2. Error analyzing c -> a: missing columns: c")
}

func TestTextNotCalculable(t *testing.T) {
	res := &relations.Result{Relations: []relations.Relation{{
		Key:    "x -> y",
		Edge:   edges.Single("x", "y"),
		Record: &relations.NumericToNumeric{Coef: 1, Intercept: 0, R2: nil, PValue: ptr(0.5)},
	}}}
	text := NewRenderer(DefaultOptions()).Text(res)
	assert.Contains(t, text, "             r2: Not calculable")
	assert.Contains(t, text, "        p_value: 0.5000")
}

func TestTextCategoryCaps(t *testing.T) {
	rec := &relations.CategoricalToNumeric{F: ptr(9), PValue: ptr(0.001), TotalMean: 10, TotalStd: ptr(5)}
	for i := 0; i < 20; i++ {
		rec.Categories = append(rec.Categories, relations.CategoryStat{
			Category: fmt.Sprintf("c%02d", i), Count: i + 1, Mean: float64(i), Std: ptr(1),
		})
		if i < 12 {
			rec.Significant = append(rec.Significant, relations.SignificantCategory{
				Category: fmt.Sprintf("c%02d", i), Mean: float64(i), Direction: "lower",
			})
		}
	}
	res := &relations.Result{Relations: []relations.Relation{{Key: "g -> v", Edge: edges.Single("g", "v"), Record: rec}}}
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.Contains(t, text, "The relationship is statistically significant (p=0.0010).")
	assert.Contains(t, text, "Note: Showing only the 15 most significant categories out of 20 total categories.")
	assert.Contains(t, text, "Note: Showing only the 10 most significant categories out of 12 significant categories.")
	var rows, sig int
	for _, line := range strings.Split(text, "\n") {
		if strings.HasSuffix(line, "%") {
			rows++
		}
		if strings.HasPrefix(line, "- c") {
			sig++
		}
	}
	assert.Equal(t, 15, rows)
	assert.Equal(t, 10, sig)
	assert.Contains(t, text, "            c19 |")
	assert.NotContains(t, text, "            c10 |")
	assert.Contains(t, text, "- c00: 0.0000 (lower than overall mean of 10.0000)")
	assert.NotContains(t, text, "- c11:")
}

// tableRows counts rendered table rows whose first cell starts with prefix.
func tableRows(text, prefix string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) && strings.Contains(line, " | ") {
			n++
		}
	}
	return n
}

func TestTextCovariateCategoryCap(t *testing.T) {
	rec := &relations.MultiCategoricalToNumeric{CovariateModel: relations.CovariateModel{
		R2: ptr(0.4), F: ptr(3), PValue: ptr(0.01),
		SourcePValues: []relations.SourcePValue{{Source: "grp", PValue: ptr(0.01)}},
		N:             465,
	}}
	var cats []relations.CategoryStat
	for i := 0; i < 30; i++ {
		cats = append(cats, relations.CategoryStat{Category: fmt.Sprintf("c%02d", i), Count: i + 1, Mean: float64(i), Std: ptr(1)})
	}
	rec.CategoryStats = []relations.SourceCategories{{Source: "grp", Categories: cats}}
	e := edges.Many([]string{"grp", "site"}, "y")
	res := &relations.Result{Relations: []relations.Relation{{Key: e.Key(), Edge: e, Record: rec}}}
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.Contains(t, text, "Note: Showing only the 15 most significant categories out of 30 total categories.")
	assert.Equal(t, 15, tableRows(text, "c"))
	assert.Contains(t, text, "            c29 |")
	assert.Contains(t, text, "            c06 |")
	assert.NotContains(t, text, "            c00 |")
}

func TestTextConditionalAndNumericEffectCaps(t *testing.T) {
	m := &relations.MultiCategoricalToCategorical{CategoricalTargetModel: relations.CategoricalTargetModel{
		TargetLevels:       []string{"n", "y"},
		TargetDistribution: []relations.TargetShare{{Category: "n", Share: 0.6}, {Category: "y", Share: 0.4}},
		Prediction:         relations.PredictiveQuality{Error: "no variables available for modeling"},
	}}
	table := relations.ConditionalTable{Source: "store"}
	for i := 0; i < 25; i++ {
		table.SourceLevels = append(table.SourceLevels, fmt.Sprintf("s%02d", i))
		py := 0.4
		if i >= 20 {
			py = 0.9
		}
		table.Probabilities = append(table.Probabilities, []float64{1 - py, py})
	}
	m.Conditional = []relations.ConditionalTable{table}
	eff := relations.NumericEffect{Source: "dose", F: ptr(2), PValue: ptr(0.2)}
	for i := 0; i < 18; i++ {
		eff.Stats = append(eff.Stats, relations.CategoryStat{Category: fmt.Sprintf("t%02d", i), Count: 5, Mean: float64(i), Std: ptr(1)})
	}
	m.NumericEffects = []relations.NumericEffect{eff}

	e := edges.Many([]string{"store", "dose"}, "bought")
	res := &relations.Result{Relations: []relations.Relation{{Key: e.Key(), Edge: e, Record: m}}}
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.Contains(t, text, "Note: Showing only the 15 most informative categories out of 25 total categories.")
	assert.Equal(t, 15, tableRows(text, "s"))
	assert.Contains(t, text, "            s24 |")
	assert.NotContains(t, text, "            s19 |")

	assert.Contains(t, text, "Note: Showing only the 15 most significant categories out of 18 total categories.")
	assert.Equal(t, 15, tableRows(text, "t"))
}

func TestTextContingencyWording(t *testing.T) {
	rec := &relations.CategoricalToCategorical{
		Chi2: 12.5, PValue: 0.0004, DF: 1, CramersV: ptr(0.35),
		Strongest: relations.Cell{Source: "x", Target: "p"}, StrongestObserved: 9, StrongestExpected: 4.5,
		MaxConditional: relations.Cell{Source: "x", Target: "p"}, MaxConditionalP: 0.9,
	}
	res := &relations.Result{Relations: []relations.Relation{{Key: "color -> size", Edge: edges.Single("color", "size"), Record: rec}}}
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.Contains(t, text, "The association is statistically significant (p=0.0004) and strong (Cramer's V=0.3500).")
	assert.Contains(t, text, "Strongest association: When color is 'x', size is most likely to be 'p'\n  Observed: 9, Expected: 4.50")
	assert.Contains(t, text, "Highest conditional probability: P(size='p' | color='x') = 0.9000")
}

func targetModel() *relations.MixedToCategorical {
	return &relations.MixedToCategorical{CategoricalTargetModel: relations.CategoricalTargetModel{
		TargetLevels: []string{"n", "y"},
		TargetDistribution: []relations.TargetShare{
			{Category: "n", Share: 0.6},
			{Category: "y", Share: 0.4},
		},
		Conditional: []relations.ConditionalTable{{
			Source:        "region",
			SourceLevels:  []string{"A", "B"},
			Probabilities: [][]float64{{0.2, 0.8}, {1.0, 0.0}},
		}},
		NumericEffects: []relations.NumericEffect{{Source: "dose", Error: "not enough valid groups for ANOVA"}},
		Combined: &relations.CombinedTable{
			Sources: [2]string{"region", "shift"},
			Best: []relations.CombinedBest{
				{Target: "n", Combination: "B_day", Probability: 1.0},
				{Target: "y", Combination: "A_night", Probability: 0.9},
			},
		},
		Prediction: relations.PredictiveQuality{ModelType: "logit", Accuracy: 0.75, PseudoR2: ptr(0.3)},
		N:          10,
	}}
}

func TestTextCategoricalTarget(t *testing.T) {
	e := edges.Many([]string{"region", "shift", "dose"}, "cured")
	res := &relations.Result{Relations: []relations.Relation{{Key: e.Key(), Edge: e, Record: targetModel()}}}
	text := NewRenderer(DefaultOptions()).Text(res)

	assert.Contains(t, text, "Relationship [region, shift, dose] -> cured\nType: mixed->categorical")
	assert.Contains(t, text, "              n: 0.6000 (60.0%)")
	assert.Contains(t, text, "       Category |               n |               y")
	assert.Contains(t, text, "- When region is 'B', cured is 'n' with probability 1.0000 (1.67x base rate)")
	assert.Contains(t, text, "- When region is 'A', cured is 'y' with probability 0.8000 (2.00x base rate)")
	assert.Contains(t, text, "Combined Effect of region and shift:")
	assert.Contains(t, text, "- For cured='y': Combination 'A_night' with probability 0.9000 (2.25x base rate)")
	assert.Contains(t, text, "Variable: dose\nError: not enough valid groups for ANOVA")
	assert.Contains(t, text, "The combined predictive power of all variables is good (accuracy: 0.7500)")
}

func TestTextPredictionError(t *testing.T) {
	m := targetModel()
	m.Prediction = relations.PredictiveQuality{Error: "no variables available for modeling"}
	e := edges.Many([]string{"region", "dose"}, "cured")
	res := &relations.Result{Relations: []relations.Relation{{Key: e.Key(), Edge: e, Record: m}}}
	text := NewRenderer(DefaultOptions()).Text(res)
	assert.Contains(t, text, "Overall Prediction Quality:\nError: no variables available for modeling")
	assert.NotContains(t, text, "combined predictive power")
}

func TestLiftAndBuckets(t *testing.T) {
	assert.InDelta(t, 2.0, Lift(0.8, 0.4), 1e-12)
	assert.True(t, math.IsInf(Lift(0.5, 0), 1))

	tests := []struct {
		acc  float64
		want string
	}{
		{0.95, "excellent"},
		{0.8, "good"},
		{0.75, "good"},
		{0.7, "moderate"},
		{0.61, "moderate"},
		{0.6, "poor"},
		{0, "poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AccuracyBucket(tt.acc), "accuracy %v", tt.acc)
	}
	assert.Equal(t, "weak", AssociationStrength(nil))
	assert.Equal(t, "moderate", AssociationStrength(ptr(0.2)))
}

func TestDocument(t *testing.T) {
	ds, res := scenario(t)
	e := edges.Many([]string{"region", "shift", "dose"}, "cured")
	res.Relations = append(res.Relations, relations.Relation{Key: e.Key(), Edge: e, Record: targetModel()})
	prof := profile.NewProfiler(profile.DefaultOptions(), nil).Analyze(ds)

	doc := NewRenderer(DefaultOptions()).Document("run-1", "trial", res, profile.NewDocument(ds, prof))
	require.Len(t, doc.Relations, 3)
	assert.Equal(t, relations.TypeCategoricalToNumeric, doc.Relations[1].Type)
	require.NotNil(t, doc.Relations[0].Interpretation.Significant)
	assert.True(t, *doc.Relations[0].Interpretation.Significant)
	assert.Equal(t, "good", doc.Relations[2].Interpretation.Quality)
	assert.Len(t, doc.Relations[2].Interpretation.Predictive, 2)

	raw, err := doc.JSON()
	require.NoError(t, err)
	var decoded struct {
		RunID     string `json:"run_id"`
		Relations []struct {
			Key     string         `json:"key"`
			Type    string         `json:"type"`
			Metrics map[string]any `json:"metrics"`
		} `json:"relations"`
		Errors  []any          `json:"errors"`
		Profile map[string]any `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "dose -> outcome", decoded.Relations[0].Key)
	assert.Contains(t, decoded.Relations[0].Metrics, "coef")
	assert.Contains(t, decoded.Relations[2].Metrics, "target_distribution")
	assert.Empty(t, decoded.Errors)
	assert.Contains(t, decoded.Profile, "column_descriptions")
}

func TestSummary(t *testing.T) {
	ds, _ := scenario(t)
	prof := profile.NewProfiler(profile.DefaultOptions(), nil).Analyze(ds)
	out := Summary("trial.csv", profile.NewDocument(ds, prof), prof.Columns)

	assert.True(t, strings.HasPrefix(out, "[DATASET SUMMARY]\nFile: trial.csv\nRows: 8\n"))
	assert.Contains(t, out, "[SCHEMA]\n- dose: continuous (non-null 8, missing 0.0%)")
	assert.Contains(t, out, "- region: categorical (non-null 8, missing 0.0%): top: A(4), B(4); unique=2")
}
