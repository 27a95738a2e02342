package hypothesis

import (
	"math"

	"abtest/domain/core"
	"abtest/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceInterval bounds the difference of means, test minus control
type ConfidenceInterval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Level  float64 `json:"level"`
	Center float64 `json:"center"`
}

// Contains returns true if the interval contains v
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// EffectSize returns Cohen's d with the pooled standard deviation.
// Positive means the test group has the larger mean.
func EffectSize(control, test []float64) (float64, error) {
	m1, v1, err := meanVariance(control)
	if err != nil {
		return 0, err
	}
	m2, v2, err := meanVariance(test)
	if err != nil {
		return 0, err
	}

	n1, n2 := float64(len(control)), float64(len(test))
	pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
	if pooled == 0 {
		return 0, errors.PreconditionFailed("effect size", core.ErrZeroRange)
	}
	return (m2 - m1) / pooled, nil
}

// MeanDifferenceCI computes a 1-alpha confidence interval for mean(test) - mean(control)
// using the Welch-Satterthwaite degrees of freedom.
func MeanDifferenceCI(control, test []float64, alpha float64) (ConfidenceInterval, error) {
	m1, v1, err := meanVariance(control)
	if err != nil {
		return ConfidenceInterval{}, err
	}
	m2, v2, err := meanVariance(test)
	if err != nil {
		return ConfidenceInterval{}, err
	}

	level := 1 - alpha
	diff := m2 - m1
	n1, n2 := float64(len(control)), float64(len(test))

	se := math.Sqrt(v1/n1 + v2/n2)
	if se == 0 {
		return ConfidenceInterval{Lower: diff, Upper: diff, Level: level, Center: diff}, nil
	}

	num := math.Pow(v1/n1+v2/n2, 2)
	denom := math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1)
	df := num / denom

	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)
	margin := tCrit * se
	return ConfidenceInterval{
		Lower:  diff - margin,
		Upper:  diff + margin,
		Level:  level,
		Center: diff,
	}, nil
}

// EffectCategory buckets |d| using Cohen's conventions
type EffectCategory string

const (
	EffectNegligible EffectCategory = "negligible"
	EffectSmall      EffectCategory = "small"
	EffectMedium     EffectCategory = "medium"
	EffectLarge      EffectCategory = "large"
)

// CategorizeEffect returns the category for a Cohen's d value
func CategorizeEffect(d float64) EffectCategory {
	switch abs := math.Abs(d); {
	case abs < 0.2:
		return EffectNegligible
	case abs < 0.5:
		return EffectSmall
	case abs < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}

func meanVariance(xs []float64) (mean, variance float64, err error) {
	if len(xs) < 2 {
		return 0, 0, errors.PreconditionFailed("mean difference", core.NewSampleSizeError("effect size", len(xs), 2))
	}
	if mean, err = stats.Mean(xs); err != nil {
		return 0, 0, errors.ComputationError("mean", err)
	}
	if variance, err = stats.SampleVariance(xs); err != nil {
		return 0, 0, errors.ComputationError("variance", err)
	}
	return mean, variance, nil
}
