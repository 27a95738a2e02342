package assumption

import (
	"math"
	"testing"

	"abtest/domain/experiment"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckerDefaultsToMedian(t *testing.T) {
	c := NewChecker(0.05, "")
	assert.Equal(t, CenterMedian, c.Center)
	assert.Equal(t, 0.05, c.Alpha)
}

func TestCheckSelectsStudentForNormalEqualSpread(t *testing.T) {
	control := blomScores(40, 550.89, 134.11)
	test := blomScores(40, 582.11, 161.15)

	got, err := NewChecker(0.05, CenterMedian).Check(experiment.MetricPurchase, control, test)
	require.NoError(t, err)

	assert.Equal(t, experiment.MetricPurchase, got.Metric)
	assert.True(t, got.NormalControl())
	assert.True(t, got.NormalTest())
	assert.True(t, got.HomogeneousVariance())
	assert.Equal(t, experiment.StudentT, got.SelectTest())
}

func TestCheckSelectsWelchForUnequalSpread(t *testing.T) {
	control := blomScores(40, 100, 1)
	test := blomScores(40, 100, 50)

	got, err := NewChecker(0.05, CenterMedian).Check(experiment.MetricEarning, control, test)
	require.NoError(t, err)

	assert.False(t, got.HomogeneousVariance())
	assert.Equal(t, experiment.WelchT, got.SelectTest())
}

func TestCheckSelectsMannWhitneyForSkew(t *testing.T) {
	control := blomScores(40, 0.1, 0.02)
	test := make([]float64, 40)
	for i := range test {
		test[i] = math.Exp(0.25 * float64(i))
	}

	got, err := NewChecker(0.05, CenterMedian).Check(experiment.MetricConversionRate, control, test)
	require.NoError(t, err)

	assert.True(t, got.NormalControl())
	assert.False(t, got.NormalTest())
	assert.Equal(t, experiment.MannWhitneyU, got.SelectTest())
}

func TestCheckPropagatesPreconditionFailure(t *testing.T) {
	_, err := NewChecker(0.05, CenterMedian).Check(experiment.MetricPurchase, []float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, errors.CodePreconditionFailed, errors.GetCode(err))
	assert.Contains(t, err.Error(), "purchase")
}
