package stats

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Normality is a Shapiro-Wilk goodness-of-fit result against a normal distribution.
type Normality struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	IsNormal  bool    `json:"is_normal"`
}

// Royston (1995) polynomial coefficients.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk computes the W statistic and its p-value using Royston's approximation.
// Valid for 3 <= n <= 5000; constant samples are rejected.
func ShapiroWilk(x []float64, alpha float64) (Normality, error) {
	n := len(x)
	if n < 3 {
		return Normality{}, fmt.Errorf("%w: shapiro-wilk needs at least 3 values, got %d", ErrInsufficient, n)
	}
	if n > 5000 {
		return Normality{}, fmt.Errorf("shapiro-wilk: sample of %d exceeds 5000", n)
	}
	xs := Sorted(x)
	if xs[n-1]-xs[0] == 0 {
		return Normality{}, fmt.Errorf("%w: all values are identical", ErrInsufficient)
	}

	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
	} else {
		an := float64(n)
		m := make([]float64, half)
		var summ2 float64
		for i := range m {
			m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (an + 0.25))
			summ2 += m[i] * m[i]
		}
		summ2 *= 2
		ssumm2 := math.Sqrt(summ2)
		rsn := 1 / math.Sqrt(an)
		a1 := poly(swC1, rsn) - m[0]/ssumm2
		start := 1
		var fac float64
		if n > 5 {
			start = 2
			a2 := -m[1]/ssumm2 + poly(swC2, rsn)
			fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
			a[1] = a2
		} else {
			fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
		}
		a[0] = a1
		for i := start; i < half; i++ {
			a[i] = -m[i] / fac
		}
	}

	// W is the squared correlation between the ordered sample and the antisymmetric weights.
	mean := Mean(xs)
	var num, ssx float64
	for i := 0; i < half; i++ {
		num += a[i] * (xs[n-1-i] - xs[i])
	}
	for _, v := range xs {
		d := v - mean
		ssx += d * d
	}
	var ssa float64
	for _, v := range a {
		ssa += 2 * v * v
	}
	w := num * num / (ssa * ssx)
	w = math.Min(w, 1)

	res := Normality{Statistic: w, PValue: swPValue(w, n)}
	res.IsNormal = res.PValue > alpha
	return res, nil
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Max(p, 0)
	}
	if w >= 1 {
		return 1
	}
	an := float64(n)
	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}
	return distuv.Normal{Mu: m, Sigma: s}.Survival(y)
}

func poly(c []float64, x float64) float64 {
	out := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		out = out*x + c[i]
	}
	return out
}

// Sample draws k values without replacement using a fixed seed so repeated passes agree.
// The input is returned unchanged when it already has at most k values.
func Sample(x []float64, k int, seed uint64) []float64 {
	if k <= 0 || len(x) <= k {
		return x
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	idx := r.Perm(len(x))[:k]
	out := make([]float64, k)
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}
