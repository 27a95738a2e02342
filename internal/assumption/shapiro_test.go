package assumption

import (
	stderrors "errors"
	"math"
	"testing"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// blomScores returns n expected normal order statistics, mean mu and scale sd
func blomScores(n int, mu, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mu + sd*distuv.UnitNormal.Quantile((float64(i+1)-0.375)/(float64(n)+0.25))
	}
	return out
}

// Sample from Shapiro and Wilk (1965); expected values match R's shapiro.test
func TestShapiroWilkReferenceSample(t *testing.T) {
	sample := []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}

	result, err := ShapiroWilk(sample, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.78881, result.Statistic, 1e-4)
	assert.InDelta(t, 0.006704, result.PValue, 2e-4)
	assert.Equal(t, experiment.Reject, result.Decision)
	assert.Equal(t, 11, result.N1)
}

func TestShapiroWilkExactThreePoints(t *testing.T) {
	result, err := ShapiroWilk([]float64{1, 2, 3}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, "shapiro_wilk", result.Name)
	assert.InDelta(t, 1.0, result.Statistic, 1e-9)
	assert.InDelta(t, 1.0, result.PValue, 1e-6)
	assert.Equal(t, experiment.FailToReject, result.Decision)
	assert.Equal(t, 3, result.N1)

	result, err = ShapiroWilk([]float64{0, 0, 1}, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, result.Statistic, 1e-9)
	assert.InDelta(t, 0.0, result.PValue, 1e-6)
	assert.Equal(t, experiment.Reject, result.Decision)
}

func TestShapiroCoefficientsUnitNorm(t *testing.T) {
	for _, n := range []int{3, 4, 5, 6, 10, 11, 12, 40, 101, 1000} {
		a := shapiroCoefficients(n)
		require.Len(t, a, n/2)

		sum := 0.0
		for _, v := range a {
			sum += 2 * v * v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "n=%d", n)
	}

	a := shapiroCoefficients(40)
	for i := 1; i < len(a); i++ {
		assert.Greater(t, a[i-1], a[i])
		assert.Greater(t, a[i], 0.0)
	}
}

func TestShapiroWilkNormalScores(t *testing.T) {
	for _, n := range []int{12, 40, 200} {
		result, err := ShapiroWilk(blomScores(n, 550, 134), 0.05)
		require.NoError(t, err)
		assert.Greater(t, result.Statistic, 0.95, "n=%d", n)
		assert.Greater(t, result.PValue, 0.5, "n=%d", n)
		assert.Equal(t, experiment.FailToReject, result.Decision)
	}
}

func TestShapiroWilkSkewedSample(t *testing.T) {
	sample := make([]float64, 40)
	for i := range sample {
		sample[i] = math.Exp(0.25 * float64(i))
	}

	result, err := ShapiroWilk(sample, 0.05)
	require.NoError(t, err)
	assert.Less(t, result.PValue, 0.001)
	assert.Equal(t, experiment.Reject, result.Decision)
}

func TestShapiroWilkSmallSampleBranch(t *testing.T) {
	result, err := ShapiroWilk([]float64{2.1, 3.4, 1.9, 5.6, 4.4, 3.3, 2.8, 4.0}, 0.05)
	require.NoError(t, err)
	assert.Greater(t, result.Statistic, 0.0)
	assert.LessOrEqual(t, result.Statistic, 1.0)
	assert.Greater(t, result.PValue, 0.05)

	result, err = ShapiroWilk([]float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, 0.05)
	require.NoError(t, err)
	assert.Less(t, result.PValue, 0.001)
}

func TestShapiroWilkDeterministicAndNonMutating(t *testing.T) {
	sample := []float64{5, 1, 4, 2, 3, 9, 7}
	orig := append([]float64(nil), sample...)

	first, err := ShapiroWilk(sample, 0.05)
	require.NoError(t, err)
	second, err := ShapiroWilk(sample, 0.05)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, sample)
}

func TestShapiroWilkPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		sample []float64
		cause  error
	}{
		{"empty", nil, core.ErrInsufficientData},
		{"two values", []float64{1, 2}, core.ErrInsufficientData},
		{"constant", []float64{4, 4, 4, 4}, core.ErrZeroRange},
		{"too many", make([]float64, ShapiroMaxN+1), core.ErrTooManySamples},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ShapiroWilk(tt.sample, 0.05)
			require.Error(t, err)
			assert.Equal(t, errors.CodePreconditionFailed, errors.GetCode(err))
			assert.True(t, stderrors.Is(err, tt.cause))
		})
	}
}
