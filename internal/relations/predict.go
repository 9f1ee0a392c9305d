package relations

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dagloom-cli/internal/stats"
)

const (
	ModelLogit  = "logit"
	ModelLinear = "linear"
)

// predictor is one attempt at fitting the predictive-quality model.
type predictor struct {
	name string
	fit  func(design [][]float64, codes []float64, classes int) (PredictiveQuality, error)
}

// predictors are tried in order; the first success is kept.
var predictors = []predictor{
	{name: ModelLogit, fit: fitLogit},
	{name: ModelLinear, fit: fitLinear},
}

// predictiveQuality scores how well all sources together predict the encoded target. A
// classification fit is preferred; when it fails the regression-based classifier is used and
// the reason is recorded.
func predictiveQuality(blocks []designBlock, codes []float64, classes int) PredictiveQuality {
	design := flatten(blocks, -1)
	if len(design) == 0 {
		return PredictiveQuality{Error: "no variables available for modeling"}
	}
	var failures []string
	for _, p := range predictors {
		q, err := p.fit(design, codes, classes)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", p.name, err))
			continue
		}
		q.FallbackReason = strings.Join(failures, "; ")
		return q
	}
	return PredictiveQuality{Error: "error during model fitting: " + strings.Join(failures, "; ")}
}

func fitLogit(design [][]float64, codes []float64, _ int) (PredictiveQuality, error) {
	fit, err := stats.Logit(design, codes)
	if err != nil {
		return PredictiveQuality{}, err
	}
	return PredictiveQuality{ModelType: ModelLogit, Accuracy: fit.Accuracy, PseudoR2: stats.Opt(fit.PseudoR2)}, nil
}

func fitLinear(design [][]float64, codes []float64, classes int) (PredictiveQuality, error) {
	lc, err := stats.FitLinearClassifier(design, codes, classes)
	if err != nil {
		return PredictiveQuality{}, err
	}
	return PredictiveQuality{ModelType: ModelLinear, Accuracy: lc.Accuracy, R2: stats.Opt(lc.R2)}, nil
}
