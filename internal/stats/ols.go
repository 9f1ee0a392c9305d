package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// maxCond bounds the condition number of the standardized design before a fit is declared singular.
const maxCond = 1e10

// design is an intercept-first model matrix whose predictor columns are centred and scaled to
// unit root mean square. Rank and conditioning are judged on this matrix so that predictor
// magnitude does not matter.
type design struct {
	X      *mat.Dense
	means  []float64
	scales []float64
}

// standardize builds the design for cols. A constant predictor is collinear with the
// intercept and reports ErrSingular.
func standardize(cols [][]float64, n int) (*design, error) {
	d := &design{
		X:      mat.NewDense(n, len(cols)+1, nil),
		means:  make([]float64, len(cols)),
		scales: make([]float64, len(cols)),
	}
	for i := 0; i < n; i++ {
		d.X.Set(i, 0, 1)
	}
	for j, c := range cols {
		m := Mean(c)
		var ss float64
		for _, v := range c {
			ss += (v - m) * (v - m)
		}
		scale := math.Sqrt(ss / float64(n))
		if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
			return nil, fmt.Errorf("%w: predictor %d is constant", ErrSingular, j)
		}
		d.means[j], d.scales[j] = m, scale
		for i, v := range c {
			d.X.Set(i, j+1, (v-m)/scale)
		}
	}
	return d, nil
}

// unscale maps coefficients of the standardized design back to the original predictors.
func (d *design) unscale(gamma []float64) []float64 {
	beta := make([]float64, len(gamma))
	beta[0] = gamma[0]
	for j := range d.means {
		beta[j+1] = gamma[j+1] / d.scales[j]
		beta[0] -= beta[j+1] * d.means[j]
	}
	return beta
}

// variances maps the covariance of standardized coefficients to variances of the original ones.
func (d *design) variances(cov mat.Matrix) []float64 {
	p := len(d.means) + 1
	out := make([]float64, p)
	a := make([]float64, p)
	a[0] = 1
	for j := range d.means {
		a[j+1] = -d.means[j] / d.scales[j]
		out[j+1] = cov.At(j+1, j+1) / (d.scales[j] * d.scales[j])
	}
	for r := 0; r < p; r++ {
		for c := 0; c < p; c++ {
			out[0] += a[r] * cov.At(r, c) * a[c]
		}
	}
	return out
}

// Fit is an ordinary least squares fit with an intercept. Coefficient slices are
// intercept-first: Coef[0] is the intercept, Coef[j+1] belongs to predictor column j.
type Fit struct {
	Coef    []float64
	StdErr  []float64
	PValues []float64
	R2      float64
	F       float64
	FPValue float64
	RSS     float64
	TSS     float64
	N       int
	DFModel int
	DFResid int
	Fitted  []float64
}

// OLS regresses y on the predictor columns plus an intercept.
// Unavailable quantities (zero residual degrees of freedom, constant y) are NaN.
func OLS(cols [][]float64, y []float64) (*Fit, error) {
	n, p := len(y), len(cols)+1
	if n == 0 || n < p {
		return nil, fmt.Errorf("%w: %d rows for %d parameters", ErrInsufficient, n, p)
	}
	for j, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("ols: predictor %d has %d rows, want %d", j, len(c), n)
		}
	}
	d, err := standardize(cols, n)
	if err != nil {
		return nil, err
	}
	X := d.X

	var qr mat.QR
	qr.Factorize(X)
	if c := qr.Cond(); math.IsNaN(c) || c > maxCond {
		return nil, ErrSingular
	}
	var gamma mat.Dense
	if err := qr.SolveTo(&gamma, false, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	g := make([]float64, p)
	for j := range g {
		g[j] = gamma.At(j, 0)
	}

	fit := &Fit{
		Coef:    d.unscale(g),
		StdErr:  make([]float64, p),
		PValues: make([]float64, p),
		N:       n,
		DFModel: p - 1,
		DFResid: n - p,
		Fitted:  make([]float64, n),
	}
	mean := Mean(y)
	for i := 0; i < n; i++ {
		yhat := 0.0
		for j := 0; j < p; j++ {
			yhat += X.At(i, j) * g[j]
		}
		fit.Fitted[i] = yhat
		r := y[i] - yhat
		fit.RSS += r * r
		dy := y[i] - mean
		fit.TSS += dy * dy
	}

	fit.R2 = math.NaN()
	if fit.TSS > 0 {
		fit.R2 = 1 - fit.RSS/fit.TSS
	}
	fit.F, fit.FPValue = math.NaN(), math.NaN()
	if fit.DFModel > 0 && fit.DFResid > 0 && fit.TSS > 0 {
		ess := math.Max(fit.TSS-fit.RSS, 0)
		if fit.RSS == 0 {
			fit.F = math.Inf(1)
		} else {
			fit.F = (ess / float64(fit.DFModel)) / (fit.RSS / float64(fit.DFResid))
		}
		fit.FPValue = fUpper(fit.F, fit.DFModel, fit.DFResid)
	}

	for j := range fit.StdErr {
		fit.StdErr[j], fit.PValues[j] = math.NaN(), math.NaN()
	}
	if fit.DFResid > 0 {
		var xtx, inv mat.Dense
		xtx.Mul(X.T(), X)
		if err := inv.Inverse(&xtx); err == nil {
			inv.Scale(fit.RSS/float64(fit.DFResid), &inv)
			for j, v := range d.variances(&inv) {
				if v < 0 || math.IsNaN(v) {
					continue
				}
				se := math.Sqrt(v)
				fit.StdErr[j] = se
				t := math.NaN()
				switch {
				case se > 0:
					t = fit.Coef[j] / se
				case fit.Coef[j] != 0:
					t = math.Inf(1)
				}
				fit.PValues[j] = studentTwoSided(t, fit.DFResid)
			}
		}
	}
	return fit, nil
}

// NestedF compares a full fit with a reduced fit that drops some predictors and returns the
// partial F statistic and its p-value. Both are NaN when the comparison is undefined.
func NestedF(full, reduced *Fit) (float64, float64) {
	q := reduced.DFResid - full.DFResid
	if q <= 0 || full.DFResid <= 0 {
		return math.NaN(), math.NaN()
	}
	diff := math.Max(reduced.RSS-full.RSS, 0)
	var f float64
	switch {
	case full.RSS > 0:
		f = (diff / float64(q)) / (full.RSS / float64(full.DFResid))
	case diff > 0:
		f = math.Inf(1)
	default:
		return math.NaN(), math.NaN()
	}
	return f, fUpper(f, q, full.DFResid)
}

// InterceptOnly is the reduced fit with no predictors.
func InterceptOnly(y []float64) *Fit {
	mean := Mean(y)
	var tss float64
	for _, v := range y {
		d := v - mean
		tss += d * d
	}
	return &Fit{Coef: []float64{mean}, RSS: tss, TSS: tss, N: len(y), DFResid: len(y) - 1}
}

// Dummies treatment-codes labels: levels are sorted lexicographically and the first is the
// reference, so one indicator column is returned per remaining level.
func Dummies(labels []string) ([][]float64, []string) {
	levels := Levels(labels)
	if len(levels) < 2 {
		return nil, levels
	}
	pos := make(map[string]int, len(levels))
	for i, l := range levels {
		pos[l] = i
	}
	cols := make([][]float64, len(levels)-1)
	for j := range cols {
		cols[j] = make([]float64, len(labels))
	}
	for i, l := range labels {
		if k := pos[l]; k > 0 {
			cols[k-1][i] = 1
		}
	}
	return cols, levels
}

// Levels returns the distinct labels in lexicographic order.
func Levels(labels []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Encode maps labels to their index in Levels(labels).
func Encode(labels []string) ([]float64, []string) {
	levels := Levels(labels)
	pos := make(map[string]int, len(levels))
	for i, l := range levels {
		pos[l] = i
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = float64(pos[l])
	}
	return out, levels
}
