package relations

// Type is the resolved relation type of an edge.
type Type string

const (
	TypeNumericToNumeric              Type = "numeric->numeric"
	TypeCategoricalToNumeric          Type = "categorical->numeric"
	TypeCategoricalToCategorical      Type = "categorical->categorical"
	TypeNumericToCategorical          Type = "numeric->categorical"
	TypeMultiNumericToNumeric         Type = "multi-numeric->numeric"
	TypeMultiCategoricalToNumeric     Type = "multi-categorical->numeric"
	TypeMixedToNumeric                Type = "mixed->numeric"
	TypeMixedToCategorical            Type = "mixed->categorical"
	TypeMultiCategoricalToCategorical Type = "multi-categorical->categorical"
)

// Record is the computed result for one edge. The concrete types below are the only
// implementations; switch on them to render or serialize.
//
// Pointer-typed statistics are nil when not calculable.
type Record interface {
	Type() Type
	record()
}

// CategoryStat summarizes the numeric side within one category.
type CategoryStat struct {
	Category string   `json:"category"`
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	Std      *float64 `json:"std"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
}

// SignificantCategory is a category whose mean is far from the overall mean.
type SignificantCategory struct {
	Category  string  `json:"category"`
	Mean      float64 `json:"mean"`
	Direction string  `json:"direction"` // "higher" or "lower"
}

// NumericToNumeric is a simple linear regression.
type NumericToNumeric struct {
	Coef      float64  `json:"coef"`
	Intercept float64  `json:"intercept"`
	R2        *float64 `json:"r2"`
	PValue    *float64 `json:"p_value"`
	N         int      `json:"n"`
}

// CategoricalToNumeric is a one-way ANOVA of the target across source categories.
type CategoricalToNumeric struct {
	F           *float64              `json:"f_value"`
	PValue      *float64              `json:"p_value"`
	Categories  []CategoryStat        `json:"category_stats"`
	TotalMean   float64               `json:"total_mean"`
	TotalStd    *float64              `json:"total_std"`
	Significant []SignificantCategory `json:"significant_categories"`
	N           int                   `json:"n"`
}

// Cell addresses one (source category, target category) pair.
type Cell struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CategoricalToCategorical is a chi-square independence test on the contingency table.
type CategoricalToCategorical struct {
	Chi2              float64     `json:"chi2"`
	PValue            float64     `json:"p_value"`
	DF                int         `json:"dof"`
	CramersV          *float64    `json:"cramers_v"`
	SourceLevels      []string    `json:"source_levels"`
	TargetLevels      []string    `json:"target_levels"`
	Observed          [][]int     `json:"contingency_table"`
	Expected          [][]float64 `json:"expected_counts"`
	Strongest         Cell        `json:"strongest_association"`
	StrongestObserved int         `json:"strongest_association_value"`
	StrongestExpected float64     `json:"strongest_association_expected"`
	MaxConditional    Cell        `json:"max_conditional_cell"`
	MaxConditionalP   float64     `json:"max_conditional_probability"`
	N                 int         `json:"n"`
}

// NumericToCategorical is an indicative linear fit of the label-encoded target.
// Encoding lists the target categories by code (index 0 first).
type NumericToCategorical struct {
	Coef      float64  `json:"coef"`
	Intercept float64  `json:"intercept"`
	Encoding  []string `json:"encoding"`
	N         int      `json:"n"`
}

// SourceCoef is one predictor of a multiple regression.
type SourceCoef struct {
	Source string   `json:"source"`
	Coef   *float64 `json:"coef"`
	PValue *float64 `json:"p_value"`
}

// MultiNumericToNumeric is a multiple linear regression.
type MultiNumericToNumeric struct {
	Coefficients []SourceCoef `json:"coefficients"`
	Intercept    float64      `json:"intercept"`
	R2           *float64     `json:"r2"`
	N            int          `json:"n"`
}

// SourcePValue is the partial F-test p-value of one source in an additive model.
type SourcePValue struct {
	Source string   `json:"source"`
	PValue *float64 `json:"p_value"`
}

// SourceCategories holds per-category target statistics for one categorical source.
type SourceCategories struct {
	Source     string         `json:"source"`
	Categories []CategoryStat `json:"categories"`
}

// CovariateModel is an additive model where categorical sources contribute group offsets.
type CovariateModel struct {
	R2            *float64           `json:"r2"`
	F             *float64           `json:"f_value"`
	PValue        *float64           `json:"overall_p_value"`
	SourcePValues []SourcePValue     `json:"p_values"`
	CategoryStats []SourceCategories `json:"category_stats"`
	N             int                `json:"n"`
}

// MultiCategoricalToNumeric is a covariate model over categorical sources only.
type MultiCategoricalToNumeric struct{ CovariateModel }

// MixedToNumeric is a covariate model over numeric and categorical sources.
type MixedToNumeric struct{ CovariateModel }

// ConditionalTable is P(target category | source category); rows follow SourceLevels and
// columns follow the target levels of the enclosing model.
type ConditionalTable struct {
	Source        string      `json:"source"`
	SourceLevels  []string    `json:"source_levels"`
	Probabilities [][]float64 `json:"probabilities"`
}

// NumericEffect describes a numeric source across target categories.
type NumericEffect struct {
	Source string         `json:"source"`
	Stats  []CategoryStat `json:"stats"`
	F      *float64       `json:"f_value,omitempty"`
	PValue *float64       `json:"p_value,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// CombinedBest is the combined value most predictive of one target category.
type CombinedBest struct {
	Target      string  `json:"target"`
	Combination string  `json:"combination"`
	Probability float64 `json:"probability"`
}

// CombinedTable is the conditional-probability table of the first two categorical sources
// joined as "a_b".
type CombinedTable struct {
	Sources       [2]string      `json:"vars"`
	Combinations  []string       `json:"combinations"`
	Probabilities [][]float64    `json:"probabilities"`
	Best          []CombinedBest `json:"max_probs"`
}

// PredictiveQuality records how well all sources jointly predict the target and which model
// produced the figure. Error is set when no model could be fitted.
type PredictiveQuality struct {
	ModelType      string   `json:"model_type,omitempty"`
	Accuracy       float64  `json:"accuracy"`
	PseudoR2       *float64 `json:"pseudo_r2,omitempty"`
	R2             *float64 `json:"r2,omitempty"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// TargetShare is the base rate of one target category.
type TargetShare struct {
	Category string  `json:"category"`
	Share    float64 `json:"share"`
}

// CategoricalTargetModel is the conditional-probability analysis of a categorical target.
type CategoricalTargetModel struct {
	TargetLevels       []string           `json:"target_levels"`
	TargetDistribution []TargetShare      `json:"target_distribution"`
	Conditional        []ConditionalTable `json:"conditional_probs"`
	NumericEffects     []NumericEffect    `json:"num_var_effects,omitempty"`
	Combined           *CombinedTable     `json:"combined_probs,omitempty"`
	Prediction         PredictiveQuality  `json:"prediction_quality"`
	N                  int                `json:"n"`
}

// BaseRate returns the share of the given target category, or 0 if unseen.
func (m *CategoricalTargetModel) BaseRate(category string) float64 {
	for _, s := range m.TargetDistribution {
		if s.Category == category {
			return s.Share
		}
	}
	return 0
}

// MixedToCategorical has at least one numeric source.
type MixedToCategorical struct{ CategoricalTargetModel }

// MultiCategoricalToCategorical has only categorical sources.
type MultiCategoricalToCategorical struct{ CategoricalTargetModel }

func (*NumericToNumeric) Type() Type              { return TypeNumericToNumeric }
func (*CategoricalToNumeric) Type() Type          { return TypeCategoricalToNumeric }
func (*CategoricalToCategorical) Type() Type      { return TypeCategoricalToCategorical }
func (*NumericToCategorical) Type() Type          { return TypeNumericToCategorical }
func (*MultiNumericToNumeric) Type() Type         { return TypeMultiNumericToNumeric }
func (*MultiCategoricalToNumeric) Type() Type     { return TypeMultiCategoricalToNumeric }
func (*MixedToNumeric) Type() Type                { return TypeMixedToNumeric }
func (*MixedToCategorical) Type() Type            { return TypeMixedToCategorical }
func (*MultiCategoricalToCategorical) Type() Type { return TypeMultiCategoricalToCategorical }

func (*NumericToNumeric) record()              {}
func (*CategoricalToNumeric) record()          {}
func (*CategoricalToCategorical) record()      {}
func (*NumericToCategorical) record()          {}
func (*MultiNumericToNumeric) record()         {}
func (*MultiCategoricalToNumeric) record()     {}
func (*MixedToNumeric) record()                {}
func (*MixedToCategorical) record()            {}
func (*MultiCategoricalToCategorical) record() {}
