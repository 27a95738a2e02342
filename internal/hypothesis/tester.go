package hypothesis

import (
	"fmt"

	"abtest/domain/experiment"
	"abtest/internal/errors"

	moremath "github.com/aclements/go-moremath/stats"
)

// Run executes a two-sided two-sample test of H0: control and test do not differ.
// The statistic is t for the t-tests and U (of the control sample) for Mann-Whitney.
func Run(kind experiment.TestKind, control, test []float64, alpha float64) (experiment.TestResult, error) {
	switch kind {
	case experiment.StudentT, experiment.WelchT:
		return runTTest(kind, control, test, alpha)
	case experiment.MannWhitneyU:
		return runMannWhitney(control, test, alpha)
	default:
		return experiment.TestResult{}, errors.InvalidInput(fmt.Sprintf("unknown test kind %q", kind), nil)
	}
}

func runTTest(kind experiment.TestKind, control, test []float64, alpha float64) (experiment.TestResult, error) {
	x1 := &moremath.Sample{Xs: control}
	x2 := &moremath.Sample{Xs: test}

	var (
		res *moremath.TTestResult
		err error
	)
	if kind == experiment.WelchT {
		res, err = moremath.TwoSampleWelchTTest(x1, x2, moremath.LocationDiffers)
	} else {
		res, err = moremath.TwoSampleTTest(x1, x2, moremath.LocationDiffers)
	}
	if err != nil {
		return experiment.TestResult{}, errors.PreconditionFailed(kind.Title(), err)
	}

	result := experiment.NewTestResult(string(kind), res.T, res.P, alpha)
	result.DegreesOfFreedom = res.DoF
	result.N1, result.N2 = res.N1, res.N2
	return result, nil
}

func runMannWhitney(control, test []float64, alpha float64) (experiment.TestResult, error) {
	res, err := moremath.MannWhitneyUTest(control, test, moremath.LocationDiffers)
	if err != nil {
		return experiment.TestResult{}, errors.PreconditionFailed(experiment.MannWhitneyU.Title(), err)
	}

	result := experiment.NewTestResult(string(experiment.MannWhitneyU), res.U, res.P, alpha)
	result.N1, result.N2 = res.N1, res.N2
	return result, nil
}
