package profiling

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// calculateSkewness returns the adjusted Fisher-Pearson skewness, 0 when undefined
func calculateSkewness(data []float64, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return stat.Skew(data, nil)
}

// calculateKurtosis returns bias-corrected excess kurtosis (0 for a normal shape)
func calculateKurtosis(data []float64, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return stat.ExKurtosis(data, nil)
}

// detectOutliers counts values outside the 1.5 IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
