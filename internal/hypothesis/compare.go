package hypothesis

import (
	"abtest/domain/experiment"
	"abtest/internal/assumption"
	"abtest/internal/errors"

	"github.com/montanaflynn/stats"
)

// Comparison is the full analysis of one metric between the two groups
type Comparison struct {
	Metric      experiment.Metric       `json:"metric"`
	Assumptions *assumption.Assumptions `json:"assumptions"`
	Kind        experiment.TestKind     `json:"kind"`
	Result      experiment.TestResult   `json:"result"`
	MeanControl float64                 `json:"mean_control"`
	MeanTest    float64                 `json:"mean_test"`
	EffectSize  float64                 `json:"effect_size"`
	CI          ConfidenceInterval      `json:"ci"`
}

// Lift is the relative change of the test mean over the control mean
func (c *Comparison) Lift() float64 {
	if c.MeanControl == 0 {
		return 0
	}
	return (c.MeanTest - c.MeanControl) / c.MeanControl
}

// Significant reports whether the groups differ at the configured alpha
func (c *Comparison) Significant() bool {
	return c.Result.Rejected()
}

// Winner returns the group with the larger mean when the difference is significant
func (c *Comparison) Winner() (experiment.Group, bool) {
	if !c.Significant() {
		return "", false
	}
	if c.MeanTest > c.MeanControl {
		return experiment.GroupTest, true
	}
	return experiment.GroupControl, true
}

// Tester checks assumptions, selects the test and runs it
type Tester struct {
	alpha   float64
	checker *assumption.Checker
}

// NewTester creates a tester sharing alpha with its assumption checker
func NewTester(alpha float64, center assumption.Center) *Tester {
	return &Tester{
		alpha:   alpha,
		checker: assumption.NewChecker(alpha, center),
	}
}

// Alpha returns the significance level
func (t *Tester) Alpha() float64 { return t.alpha }

// Center returns the Levene centring in use
func (t *Tester) Center() assumption.Center { return t.checker.Center }

// Compare runs the assumption checks and the selected test for one metric.
// A failed assumption changes the test; it is never an error.
func (t *Tester) Compare(metric experiment.Metric, control, test []float64) (*Comparison, error) {
	checks, err := t.checker.Check(metric, control, test)
	if err != nil {
		return nil, err
	}

	kind := checks.SelectTest()
	result, err := Run(kind, control, test, t.alpha)
	if err != nil {
		return nil, errors.Wrapf(err, "%s on %s", kind, metric)
	}

	meanControl, err := stats.Mean(control)
	if err != nil {
		return nil, errors.ComputationError("mean of control", err)
	}
	meanTest, err := stats.Mean(test)
	if err != nil {
		return nil, errors.ComputationError("mean of test", err)
	}

	d, err := EffectSize(control, test)
	if err != nil {
		return nil, errors.Wrapf(err, "effect size of %s", metric)
	}
	ci, err := MeanDifferenceCI(control, test, t.alpha)
	if err != nil {
		return nil, errors.Wrapf(err, "confidence interval of %s", metric)
	}

	return &Comparison{
		Metric:      metric,
		Assumptions: checks,
		Kind:        kind,
		Result:      result,
		MeanControl: meanControl,
		MeanTest:    meanTest,
		EffectSize:  d,
		CI:          ci,
	}, nil
}

// CompareDataset compares every analysed metric of the dataset in order
func (t *Tester) CompareDataset(ds *experiment.Dataset) ([]*Comparison, error) {
	out := make([]*Comparison, 0, len(experiment.AnalyzedMetrics))
	for _, m := range experiment.AnalyzedMetrics {
		c, err := t.Compare(m, ds.Values(experiment.GroupControl, m), ds.Values(experiment.GroupTest, m))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
