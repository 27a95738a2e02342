package assumption

import (
	"math"
	"sort"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sample size limits of the Royston approximation
const (
	ShapiroMinN = 3
	ShapiroMaxN = 5000
)

// Royston (1995), algorithm AS R94
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk tests H0: the sample comes from a normal distribution.
// Statistic is W; the decision rejects normality when p < alpha.
func ShapiroWilk(sample []float64, alpha float64) (experiment.TestResult, error) {
	w, p, err := shapiroWilk(sample)
	if err != nil {
		return experiment.TestResult{}, errors.PreconditionFailed("shapiro-wilk", err)
	}
	result := experiment.NewTestResult("shapiro_wilk", w, p, alpha)
	result.N1 = len(sample)
	return result, nil
}

func shapiroWilk(sample []float64) (w, p float64, err error) {
	n := len(sample)
	if n < ShapiroMinN {
		return 0, 0, core.NewSampleSizeError("shapiro-wilk", n, ShapiroMinN)
	}
	if n > ShapiroMaxN {
		return 0, 0, core.ErrTooManySamples
	}

	x := make([]float64, n)
	copy(x, sample)
	sort.Float64s(x)

	if x[n-1]-x[0] < 1e-19 {
		return 0, 0, core.ErrZeroRange
	}

	a := shapiroCoefficients(n)

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	ssq := 0.0
	for _, v := range x {
		ssq += (v - mean) * (v - mean)
	}

	b := 0.0
	for i, ai := range a {
		b += ai * (x[n-1-i] - x[i])
	}

	w = b * b / ssq
	if w > 1 {
		w = 1
	}

	return w, shapiroPValue(w, n), nil
}

// shapiroCoefficients returns the positive half of the antisymmetric weights,
// a[i] pairing x[i] with x[n-1-i]. The full vector has unit norm.
func shapiroCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)

	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(swC1, rsn) - m[0]/ssumm2

	var first int
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		first = 1
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		// exact
		const pi6, stqr = 6 / math.Pi, math.Pi / 3
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return math.Max(p, 0)
	}

	an := float64(n)
	w1 := math.Log(1 - w)

	var y, m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if w1 >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - w1)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		y = w1
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}

	return distuv.UnitNormal.Survival((y - m) / s)
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
