package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	logitMaxIter = 35
	logitTol     = 1e-8
)

// LogitFit is a binary logistic regression fitted by Newton-Raphson.
type LogitFit struct {
	Coef       []float64 // intercept first
	LogLik     float64
	LLNull     float64
	PseudoR2   float64 // McFadden
	Accuracy   float64 // share of rows where (p > 0.5) matches y
	Iterations int
}

// Logit fits P(y=1) = sigmoid(b0 + X b). y must be coded 0/1 with both classes present.
func Logit(cols [][]float64, y []float64) (*LogitFit, error) {
	n, p := len(y), len(cols)+1
	if n <= p {
		return nil, fmt.Errorf("%w: %d rows for %d parameters", ErrInsufficient, n, p)
	}
	var ones float64
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("%w: found value %v", ErrNotBinary, v)
		}
		ones += v
	}
	if ones == 0 || ones == float64(n) {
		return nil, fmt.Errorf("%w: only one class present", ErrNotBinary)
	}
	d, err := standardize(cols, n)
	if err != nil {
		return nil, err
	}
	X := d.X

	beta := mat.NewVecDense(p, nil)
	prob := make([]float64, n)
	converged := false
	iter := 0
	for iter = 1; iter <= logitMaxIter; iter++ {
		var eta mat.VecDense
		eta.MulVec(X, beta)
		grad := mat.NewVecDense(p, nil)
		hess := mat.NewSymDense(p, nil)
		for i := 0; i < n; i++ {
			pi := sigmoid(eta.AtVec(i))
			prob[i] = pi
			w := pi * (1 - pi)
			r := y[i] - pi
			for a := 0; a < p; a++ {
				xa := X.At(i, a)
				grad.SetVec(a, grad.AtVec(a)+xa*r)
				for b := a; b < p; b++ {
					hess.SetSym(a, b, hess.At(a, b)+w*xa*X.At(i, b))
				}
			}
		}
		var chol mat.Cholesky
		if !chol.Factorize(hess) {
			return nil, fmt.Errorf("%w: Hessian is not positive definite at iteration %d", ErrSingular, iter)
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, grad); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		beta.AddVec(beta, &step)
		if mat.Norm(&step, math.Inf(1)) < logitTol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("%w after %d iterations (possible perfect separation)", ErrNoConvergence, logitMaxIter)
	}

	var eta mat.VecDense
	eta.MulVec(X, beta)
	g := make([]float64, p)
	for j := range g {
		g[j] = beta.AtVec(j)
	}
	fit := &LogitFit{Coef: d.unscale(g), Iterations: iter}
	correct := 0
	for i := 0; i < n; i++ {
		pi := sigmoid(eta.AtVec(i))
		fit.LogLik += y[i]*safeLog(pi) + (1-y[i])*safeLog(1-pi)
		if (pi > 0.5) == (y[i] == 1) {
			correct++
		}
	}
	pbar := ones / float64(n)
	fit.LLNull = float64(n) * (pbar*math.Log(pbar) + (1-pbar)*math.Log(1-pbar))
	fit.PseudoR2 = 1 - fit.LogLik/fit.LLNull
	fit.Accuracy = float64(correct) / float64(n)
	return fit, nil
}

// LinearClassifier fits y (class indices 0..classes-1) by least squares and predicts the
// nearest class index. It is the fallback when a logistic fit is unavailable.
type LinearClassifier struct {
	Fit      *Fit
	Accuracy float64
	R2       float64
}

// FitLinearClassifier regresses class indices on the predictors.
func FitLinearClassifier(cols [][]float64, y []float64, classes int) (*LinearClassifier, error) {
	fit, err := OLS(cols, y)
	if err != nil {
		return nil, err
	}
	correct := 0
	for i, yhat := range fit.Fitted {
		pred := math.Round(yhat)
		pred = math.Max(0, math.Min(float64(classes-1), pred))
		if pred == y[i] {
			correct++
		}
	}
	return &LinearClassifier{Fit: fit, Accuracy: float64(correct) / float64(len(y)), R2: fit.R2}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func safeLog(v float64) float64 {
	return math.Log(math.Max(v, 1e-300))
}
