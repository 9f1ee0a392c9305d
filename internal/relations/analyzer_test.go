package relations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/edges"
)

func newAnalyzer() *Analyzer { return NewAnalyzer(DefaultOptions(), zap.NewNop()) }

func trialDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	dose := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	outcome := make([]float64, len(dose))
	for i, d := range dose {
		outcome[i] = 3 + 1.5*d + []float64{0.2, -0.1, 0.3, -0.2, 0.1, 0, -0.3, 0.2, -0.1, 0.1, 0.2, -0.2}[i]
	}
	region := []string{"A", "B", "A", "B", "A", "B", "A", "B", "A", "B", "A", "B"}
	cured := []string{"n", "n", "y", "n", "y", "n", "y", "y", "n", "y", "y", "y"}
	grade := []string{"lo", "lo", "mid", "lo", "mid", "mid", "hi", "mid", "hi", "hi", "hi", "hi"}
	shift := []string{"day", "day", "night", "night", "day", "day", "night", "night", "day", "day", "night", "night"}
	ds, err := dataset.New("trial",
		dataset.NewNumeric("dose", dose),
		dataset.NewNumeric("outcome", outcome),
		dataset.NewText("region", region, nil),
		dataset.NewText("cured", cured, nil),
		dataset.NewText("grade", grade, nil),
		dataset.NewText("shift", shift, nil),
	)
	require.NoError(t, err)
	return ds
}

func TestAnalyzeDoseOutcomeRegionScenario(t *testing.T) {
	ds := trialDataset(t)
	res := newAnalyzer().Analyze(ds, []edges.Edge{
		edges.Single("dose", "outcome"),
		edges.Single("region", "outcome"),
	})

	require.Empty(t, res.Errors)
	require.Len(t, res.Relations, 2)
	assert.Equal(t, TypeNumericToNumeric, res.Relations[0].Record.Type())
	assert.Equal(t, TypeCategoricalToNumeric, res.Relations[1].Record.Type())

	reg, ok := res.Get("dose -> outcome")
	require.True(t, ok)
	nn := reg.(*NumericToNumeric)
	assert.InDelta(t, 1.5, nn.Coef, 0.05)
	require.NotNil(t, nn.PValue)
	assert.Less(t, *nn.PValue, 0.001)

	grp, ok := res.Get("region -> outcome")
	require.True(t, ok)
	cn := grp.(*CategoricalToNumeric)
	require.Len(t, cn.Categories, 2)
	assert.Equal(t, "A", cn.Categories[0].Category)
	assert.Equal(t, 6, cn.Categories[0].Count)
}

func TestAnalyzeExactLine(t *testing.T) {
	ds := dataset.MustNew("line",
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 5}),
		dataset.NewNumeric("y", []float64{2, 4, 6, 8, 10}),
	)
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("x", "y")})
	require.Empty(t, res.Errors)
	rec := res.Relations[0].Record.(*NumericToNumeric)
	assert.InDelta(t, 2.0, rec.Coef, 1e-9)
	assert.InDelta(t, 0.0, rec.Intercept, 1e-9)
	require.NotNil(t, rec.R2)
	assert.InDelta(t, 1.0, *rec.R2, 1e-9)
}

func TestAnalyzeLargeMagnitudeSources(t *testing.T) {
	gdp := []float64{1.1e11, 2.3e11, 3.0e11, 4.4e11, 5.1e11, 6.7e11, 7.2e11, 8.2e11}
	score := make([]float64, len(gdp))
	for i, v := range gdp {
		score[i] = 2*v/1e11 + []float64{0.1, -0.2, 0.05, 0.1, -0.1, 0.2, -0.05, 0}[i]
	}
	rev := make([]float64, 12)
	grp := make([]string, 12)
	y := make([]float64, 12)
	for i := range rev {
		rev[i] = 1e9 + float64(i)*1e8
		grp[i] = []string{"A", "B"}[i%2]
		y[i] = rev[i]/1e9 + float64(i%2) + []float64{0.1, -0.1, 0.05, 0}[i%4]
	}
	nation := dataset.MustNew("nations",
		dataset.NewNumeric("gdp", gdp),
		dataset.NewNumeric("score", score),
	)
	firms := dataset.MustNew("firms",
		dataset.NewNumeric("rev", rev),
		dataset.NewText("grp", grp, nil),
		dataset.NewNumeric("y", y),
	)

	res := newAnalyzer().Analyze(nation, []edges.Edge{edges.Single("gdp", "score")})
	require.Empty(t, res.Errors)
	nn := res.Relations[0].Record.(*NumericToNumeric)
	assert.InEpsilon(t, 2e-11, nn.Coef, 0.05)
	require.NotNil(t, nn.PValue)
	assert.Less(t, *nn.PValue, 1e-4)

	res = newAnalyzer().Analyze(firms, []edges.Edge{edges.Many([]string{"rev", "grp"}, "y")})
	require.Empty(t, res.Errors)
	require.Len(t, res.Relations, 1)
	mixed := res.Relations[0].Record.(*MixedToNumeric)
	require.NotNil(t, mixed.R2)
	assert.Greater(t, *mixed.R2, 0.9)
}

func TestAnalyzeMissingColumnLogsOneStructuralError(t *testing.T) {
	ds := trialDataset(t)
	tests := []struct {
		name string
		edge edges.Edge
	}{
		{name: "missing source", edge: edges.Single("weight", "outcome")},
		{name: "missing target", edge: edges.Single("dose", "weight")},
		{name: "missing both", edge: edges.Single("height", "weight")},
		{name: "missing in list", edge: edges.Many([]string{"dose", "height"}, "outcome")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newAnalyzer().Analyze(ds, []edges.Edge{tt.edge})
			assert.Empty(t, res.Relations)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, KindStructural, res.Errors[0].Kind)
			assert.Equal(t, tt.edge.Key(), res.Errors[0].Subject)
			assert.Contains(t, res.Errors[0].String(), "Error analyzing "+tt.edge.Key())
		})
	}
}

func TestAnalyzeNoCommonRows(t *testing.T) {
	nan := math.NaN()
	ds := dataset.MustNew("gaps",
		dataset.NewNumeric("x", []float64{1, nan, 3, nan}),
		dataset.NewNumeric("y", []float64{nan, 2, nan, 4}),
		dataset.NewText("c", []string{"a", "b", "a", "b"}, []bool{false, true, false, true}),
	)
	res := newAnalyzer().Analyze(ds, []edges.Edge{
		edges.Single("x", "y"),
		edges.Many([]string{"x", "c"}, "y"),
	})
	assert.Empty(t, res.Relations)
	require.Len(t, res.Errors, 2)
	for _, e := range res.Errors {
		assert.Equal(t, KindInsufficient, e.Kind)
		var ie *InsufficientDataError
		assert.ErrorAs(t, e.Err, &ie)
	}
	// the shared dataset keeps its nulls
	assert.Equal(t, 6, ds.MissingCells())
}

func TestAnalyzeIndependentCategoricals(t *testing.T) {
	// every (a, b) pair occurs equally often, so the columns are exactly independent
	n := 600
	a := make([]string, n)
	b := make([]string, n)
	for i := 0; i < n; i++ {
		a[i] = []string{"red", "green", "blue"}[i%3]
		b[i] = []string{"up", "down"}[(i/3)%2]
	}
	ds := dataset.MustNew("indep", dataset.NewText("a", a, nil), dataset.NewText("b", b, nil))
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("a", "b")})
	require.Empty(t, res.Errors)
	rec := res.Relations[0].Record.(*CategoricalToCategorical)
	assert.Greater(t, rec.PValue, 0.05)
	require.NotNil(t, rec.CramersV)
	assert.InDelta(t, 0, *rec.CramersV, 0.05)
	assert.Equal(t, []string{"blue", "green", "red"}, rec.SourceLevels)
	assert.Equal(t, 2, rec.DF)
}

func TestAnalyzeAssociatedCategoricals(t *testing.T) {
	src := []string{"a", "a", "a", "a", "b", "b", "b", "b", "c", "c", "c", "c"}
	tgt := []string{"x", "x", "x", "y", "y", "y", "y", "y", "z", "z", "z", "x"}
	ds := dataset.MustNew("assoc", dataset.NewText("s", src, nil), dataset.NewText("t", tgt, nil))
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("s", "t")})
	require.Empty(t, res.Errors)
	rec := res.Relations[0].Record.(*CategoricalToCategorical)
	assert.Equal(t, Cell{Source: "b", Target: "y"}, rec.MaxConditional)
	assert.InDelta(t, 1.0, rec.MaxConditionalP, 1e-12)
	assert.Equal(t, Cell{Source: "c", Target: "z"}, rec.Strongest)
	assert.Equal(t, 3, rec.StrongestObserved)
	assert.InDelta(t, 1.0, rec.StrongestExpected, 1e-12)
	require.NotNil(t, rec.CramersV)
	assert.Greater(t, *rec.CramersV, 0.3)
}

func TestAnalyzeGroupMeansFlagSignificantCategories(t *testing.T) {
	var group []string
	var value []float64
	for _, v := range []float64{9.9, 10.1, 10, 9.95, 10.05, 9.9, 10.1, 10, 9.95, 10.05} {
		group, value = append(group, "low"), append(value, v)
	}
	for _, v := range []float64{19.9, 20.1} {
		group, value = append(group, "mid"), append(value, v)
	}
	for _, v := range []float64{29.9, 30.1} {
		group, value = append(group, "top"), append(value, v)
	}
	ds := dataset.MustNew("groups", dataset.NewText("g", group, nil), dataset.NewNumeric("v", value))
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("g", "v")})
	require.Empty(t, res.Errors)

	rec := res.Relations[0].Record.(*CategoricalToNumeric)
	require.NotNil(t, rec.PValue)
	assert.Less(t, *rec.PValue, 0.05)
	require.Len(t, rec.Significant, 3)
	assert.Equal(t, SignificantCategory{Category: "low", Mean: rec.Categories[0].Mean, Direction: "lower"}, rec.Significant[0])
	assert.Equal(t, "higher", rec.Significant[1].Direction)
	assert.Equal(t, "higher", rec.Significant[2].Direction)
}

func TestAnalyzeANOVANeedsTwoUsableGroups(t *testing.T) {
	ds := dataset.MustNew("thin",
		dataset.NewText("g", []string{"a", "a", "b", "c"}, nil),
		dataset.NewNumeric("v", []float64{1, 2, 3, 4}),
	)
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("g", "v")})
	assert.Empty(t, res.Relations)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindInsufficient, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "multiple data points")
}

func TestAnalyzeNumericToCategoricalUsesSortedEncoding(t *testing.T) {
	ds := dataset.MustNew("enc",
		dataset.NewNumeric("x", []float64{1, 2, 3, 4}),
		dataset.NewText("label", []string{"zeta", "zeta", "alpha", "alpha"}, nil),
	)
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("x", "label")})
	require.Empty(t, res.Errors)
	rec := res.Relations[0].Record.(*NumericToCategorical)
	assert.Equal(t, []string{"alpha", "zeta"}, rec.Encoding)
	// zeta=1 at small x, alpha=0 at large x
	assert.Less(t, rec.Coef, 0.0)

	single := dataset.MustNew("one",
		dataset.NewNumeric("x", []float64{1, 2}),
		dataset.NewText("label", []string{"k", "k"}, nil),
	)
	res = newAnalyzer().Analyze(single, []edges.Edge{edges.Single("x", "label")})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindInsufficient, res.Errors[0].Kind)
}

func TestAnalyzeMultiSourceNumericTarget(t *testing.T) {
	ds := trialDataset(t)
	res := newAnalyzer().Analyze(ds, []edges.Edge{
		edges.Many([]string{"dose"}, "outcome"),
		edges.Many([]string{"dose", "region"}, "outcome"),
		edges.Many([]string{"region", "shift"}, "outcome"),
	})
	require.Empty(t, res.Errors)
	require.Len(t, res.Relations, 3)

	mn := res.Relations[0].Record.(*MultiNumericToNumeric)
	require.Len(t, mn.Coefficients, 1)
	assert.Equal(t, "dose", mn.Coefficients[0].Source)
	require.NotNil(t, mn.Coefficients[0].Coef)
	assert.InDelta(t, 1.5, *mn.Coefficients[0].Coef, 0.05)

	mixed := res.Relations[1].Record.(*MixedToNumeric)
	require.Len(t, mixed.SourcePValues, 2)
	require.NotNil(t, mixed.SourcePValues[0].PValue)
	assert.Less(t, *mixed.SourcePValues[0].PValue, 0.001)
	require.Len(t, mixed.CategoryStats, 1)
	assert.Equal(t, "region", mixed.CategoryStats[0].Source)
	require.NotNil(t, mixed.R2)
	assert.Greater(t, *mixed.R2, 0.99)

	cats := res.Relations[2].Record.(*MultiCategoricalToNumeric)
	assert.Equal(t, TypeMultiCategoricalToNumeric, cats.Type())
	assert.Len(t, cats.SourcePValues, 2)
	assert.Len(t, cats.CategoryStats, 2)
	assert.NotNil(t, cats.F)
}

func TestAnalyzeMultiSourceCategoricalTarget(t *testing.T) {
	ds := trialDataset(t)
	res := newAnalyzer().Analyze(ds, []edges.Edge{
		edges.Many([]string{"dose", "region"}, "cured"),
		edges.Many([]string{"dose", "region"}, "grade"),
		edges.Many([]string{"region", "shift"}, "cured"),
	})
	require.Empty(t, res.Errors)
	require.Len(t, res.Relations, 3)

	binary := res.Relations[0].Record.(*MixedToCategorical)
	assert.Equal(t, []string{"n", "y"}, binary.TargetLevels)
	assert.InDelta(t, 5.0/12, binary.BaseRate("n"), 1e-12)
	require.Len(t, binary.Conditional, 1)
	assert.Equal(t, "region", binary.Conditional[0].Source)
	require.Len(t, binary.NumericEffects, 1)
	assert.Empty(t, binary.NumericEffects[0].Error)
	assert.Equal(t, ModelLogit, binary.Prediction.ModelType)
	assert.Empty(t, binary.Prediction.FallbackReason)
	assert.NotNil(t, binary.Prediction.PseudoR2)

	multiclass := res.Relations[1].Record.(*MixedToCategorical)
	assert.Equal(t, ModelLinear, multiclass.Prediction.ModelType)
	assert.Contains(t, multiclass.Prediction.FallbackReason, ModelLogit)
	assert.NotNil(t, multiclass.Prediction.R2)

	cats := res.Relations[2].Record.(*MultiCategoricalToCategorical)
	require.NotNil(t, cats.Combined)
	assert.Equal(t, [2]string{"region", "shift"}, cats.Combined.Sources)
	assert.Equal(t, []string{"A_day", "A_night", "B_day", "B_night"}, cats.Combined.Combinations)
	assert.Len(t, cats.Combined.Best, 2)
	assert.Nil(t, cats.NumericEffects)
	for _, row := range cats.Conditional[0].Probabilities {
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-12)
	}
	// the combined key is edge-scoped
	_, leaked := ds.Column("combined")
	assert.False(t, leaked)
	assert.Len(t, ds.Columns, 6)
}

func TestAnalyzeDuplicateEdgeKeepsPositionAndLatestRecord(t *testing.T) {
	ds := trialDataset(t)
	res := newAnalyzer().Analyze(ds, []edges.Edge{
		edges.Single("dose", "outcome"),
		edges.Single("region", "outcome"),
		edges.Single("dose", "outcome"),
	})
	require.Len(t, res.Relations, 2)
	assert.Equal(t, "dose -> outcome", res.Relations[0].Key)
	assert.Equal(t, "region -> outcome", res.Relations[1].Key)
}

func TestAnalyzeIsIdempotentAndWorkerIndependent(t *testing.T) {
	ds := trialDataset(t)
	list := []edges.Edge{
		edges.Single("dose", "outcome"),
		edges.Single("missing", "outcome"),
		edges.Single("region", "cured"),
		edges.Single("dose", "grade"),
		edges.Many([]string{"dose", "region"}, "outcome"),
		edges.Many([]string{"region", "shift"}, "grade"),
	}
	first := newAnalyzer().Analyze(ds, list)
	second := newAnalyzer().Analyze(ds, list)
	assert.Equal(t, first, second)

	parallel := NewAnalyzer(Options{SignificanceStdFactor: 0.5, Workers: 4}, zap.NewNop()).Analyze(ds, list)
	assert.Equal(t, first, parallel)
	require.Len(t, first.Errors, 1)
	assert.Equal(t, "missing -> outcome", first.Errors[0].Subject)
}

func TestAnalyzeBooleanAndTimestampAreCategorical(t *testing.T) {
	ds := dataset.MustNew("kinds",
		dataset.NewBoolean("flag", []bool{true, false, true, false, true, false}, nil),
		dataset.NewNumeric("v", []float64{5, 1, 6, 2, 5.5, 1.5}),
	)
	res := newAnalyzer().Analyze(ds, []edges.Edge{edges.Single("flag", "v")})
	require.Empty(t, res.Errors)
	rec := res.Relations[0].Record.(*CategoricalToNumeric)
	assert.Equal(t, "false", rec.Categories[0].Category)
	assert.Equal(t, "true", rec.Categories[1].Category)
}
