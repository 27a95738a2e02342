package assumption

import (
	"abtest/domain/experiment"
	"abtest/internal/errors"
)

// Assumptions bundles the normality and variance checks for one metric
type Assumptions struct {
	Metric           experiment.Metric     `json:"metric"`
	NormalityControl experiment.TestResult `json:"normality_control"`
	NormalityTest    experiment.TestResult `json:"normality_test"`
	Variance         experiment.TestResult `json:"variance"`
}

// NormalControl is true when normality of the control sample was not rejected
func (a *Assumptions) NormalControl() bool { return !a.NormalityControl.Rejected() }

// NormalTest is true when normality of the test sample was not rejected
func (a *Assumptions) NormalTest() bool { return !a.NormalityTest.Rejected() }

// HomogeneousVariance is true when equal variances were not rejected
func (a *Assumptions) HomogeneousVariance() bool { return !a.Variance.Rejected() }

// SelectTest returns the two-sample test these outcomes call for
func (a *Assumptions) SelectTest() experiment.TestKind {
	return experiment.SelectTest(a.NormalControl(), a.NormalTest(), a.HomogeneousVariance())
}

// Checker runs the assumption checks at a fixed alpha
type Checker struct {
	Alpha  float64
	Center Center
}

// NewChecker creates a checker; an empty center means median
func NewChecker(alpha float64, center Center) *Checker {
	if center == "" {
		center = CenterMedian
	}
	return &Checker{Alpha: alpha, Center: center}
}

// Check runs Shapiro-Wilk on each group and Levene across both
func (c *Checker) Check(metric experiment.Metric, control, test []float64) (*Assumptions, error) {
	normControl, err := ShapiroWilk(control, c.Alpha)
	if err != nil {
		return nil, errors.Wrapf(err, "normality of %s (%s)", metric, experiment.GroupControl)
	}
	normTest, err := ShapiroWilk(test, c.Alpha)
	if err != nil {
		return nil, errors.Wrapf(err, "normality of %s (%s)", metric, experiment.GroupTest)
	}
	variance, err := Levene(c.Center, c.Alpha, control, test)
	if err != nil {
		return nil, errors.Wrapf(err, "variance homogeneity of %s", metric)
	}

	return &Assumptions{
		Metric:           metric,
		NormalityControl: normControl,
		NormalityTest:    normTest,
		Variance:         variance,
	}, nil
}
