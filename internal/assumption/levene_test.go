package assumption

import (
	stderrors "errors"
	"testing"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCenter(t *testing.T) {
	tests := []struct {
		in      string
		want    Center
		wantErr bool
	}{
		{"", CenterMedian, false},
		{"median", CenterMedian, false},
		{" Mean ", CenterMean, false},
		{"trimmed", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCenter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeveneKnownValue(t *testing.T) {
	result, err := Levene(CenterMedian, 0.05, []float64{1, 2, 3}, []float64{1, 3, 5})
	require.NoError(t, err)

	assert.Equal(t, "levene_median", result.Name)
	assert.InDelta(t, 0.8, result.Statistic, 1e-12)
	assert.InDelta(t, 0.4216, result.PValue, 1e-3)
	assert.Equal(t, 4.0, result.DegreesOfFreedom)
	assert.Equal(t, 3, result.N1)
	assert.Equal(t, 3, result.N2)
	assert.Equal(t, experiment.FailToReject, result.Decision)
}

func TestLeveneCenterMatters(t *testing.T) {
	a := []float64{1, 2, 9}
	b := []float64{1, 3, 5}

	median, err := Levene(CenterMedian, 0.05, a, b)
	require.NoError(t, err)
	mean, err := Levene(CenterMean, 0.05, a, b)
	require.NoError(t, err)

	assert.Equal(t, "levene_mean", mean.Name)
	assert.NotEqual(t, median.Statistic, mean.Statistic)
}

func TestLeveneDetectsUnequalSpread(t *testing.T) {
	narrow := make([]float64, 20)
	wide := make([]float64, 20)
	for i := range narrow {
		narrow[i] = float64(i) / 10
		wide[i] = float64(i) * 10
	}

	result, err := Levene(CenterMedian, 0.05, narrow, wide)
	require.NoError(t, err)
	assert.Less(t, result.PValue, 0.001)
	assert.Equal(t, experiment.Reject, result.Decision)
	assert.Equal(t, 38.0, result.DegreesOfFreedom)
}

func TestLeveneEqualSpread(t *testing.T) {
	a := blomScores(40, 550, 134)
	b := blomScores(40, 582, 134)

	result, err := Levene(CenterMedian, 0.05, a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Statistic, 1e-9)
	assert.InDelta(t, 1.0, result.PValue, 1e-6)
}

func TestLevenePreconditions(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]float64
		cause  error
	}{
		{"one group", [][]float64{{1, 2, 3}}, core.ErrInsufficientData},
		{"short group", [][]float64{{1, 2, 3}, {4}}, core.ErrInsufficientData},
		{"constant deviations", [][]float64{{1, 1, 1}, {2, 2, 2}}, core.ErrZeroRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Levene(CenterMedian, 0.05, tt.groups...)
			require.Error(t, err)
			assert.Equal(t, errors.CodePreconditionFailed, errors.GetCode(err))
			assert.True(t, stderrors.Is(err, tt.cause))
		})
	}
}
