package assumption

import (
	"fmt"
	"math"
	"strings"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Center selects the location each group's deviations are taken from
type Center string

const (
	// CenterMedian is the Brown-Forsythe variant, robust to skew
	CenterMedian Center = "median"
	CenterMean   Center = "mean"
)

// ParseCenter converts a configuration value into a Center
func ParseCenter(s string) (Center, error) {
	switch c := Center(strings.ToLower(strings.TrimSpace(s))); c {
	case CenterMedian, CenterMean:
		return c, nil
	case "":
		return CenterMedian, nil
	default:
		return "", fmt.Errorf("unknown levene center %q", s)
	}
}

// Levene tests H0: all groups have equal variances.
// Statistic follows F(k-1, N-k); the decision rejects homogeneity when p < alpha.
func Levene(center Center, alpha float64, groups ...[]float64) (experiment.TestResult, error) {
	stat, df1, df2, err := levene(center, groups)
	if err != nil {
		return experiment.TestResult{}, errors.PreconditionFailed("levene", err)
	}

	p := distuv.F{D1: df1, D2: df2}.Survival(stat)

	result := experiment.NewTestResult("levene_"+string(center), stat, p, alpha)
	result.DegreesOfFreedom = df2
	if len(groups) == 2 {
		result.N1, result.N2 = len(groups[0]), len(groups[1])
	}
	return result, nil
}

func levene(center Center, groups [][]float64) (stat, df1, df2 float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, 0, fmt.Errorf("%w: levene needs at least two groups", core.ErrInsufficientData)
	}

	deviations := make([][]float64, k)
	groupMeans := make([]float64, k)
	total := 0
	grandSum := 0.0

	for i, g := range groups {
		if len(g) < 2 {
			return 0, 0, 0, core.NewSampleSizeError("levene", len(g), 2)
		}

		var loc float64
		switch center {
		case CenterMean:
			loc, err = stats.Mean(g)
		case CenterMedian:
			loc, err = stats.Median(g)
		default:
			err = fmt.Errorf("unknown levene center %q", center)
		}
		if err != nil {
			return 0, 0, 0, err
		}

		z := make([]float64, len(g))
		sum := 0.0
		for j, v := range g {
			z[j] = math.Abs(v - loc)
			sum += z[j]
		}
		deviations[i] = z
		groupMeans[i] = sum / float64(len(g))
		total += len(g)
		grandSum += sum
	}

	grandMean := grandSum / float64(total)

	between := 0.0
	within := 0.0
	for i, z := range deviations {
		d := groupMeans[i] - grandMean
		between += float64(len(z)) * d * d
		for _, v := range z {
			within += (v - groupMeans[i]) * (v - groupMeans[i])
		}
	}

	if within == 0 {
		return 0, 0, 0, fmt.Errorf("%w: absolute deviations are constant within every group", core.ErrZeroRange)
	}

	df1 = float64(k - 1)
	df2 = float64(total - k)
	stat = (df2 / df1) * between / within
	return stat, df1, df2, nil
}
