package profiling

import (
	"fmt"
	"math"
	"sort"

	"abtest/domain/experiment"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes one metric for one group
type ColumnSummary struct {
	Metric   experiment.Metric `json:"metric"`
	Count    int               `json:"count"`
	Mean     float64           `json:"mean"`
	StdDev   float64           `json:"std"`
	Min      float64           `json:"min"`
	Q25      float64           `json:"q25"`
	Median   float64           `json:"median"`
	Q75      float64           `json:"q75"`
	Max      float64           `json:"max"`
	Skewness float64           `json:"skewness"`
	Kurtosis float64           `json:"kurtosis"`
	Outliers int               `json:"outliers"`
}

// GroupSummary describes every metric of one group
type GroupSummary struct {
	Group   experiment.Group `json:"group"`
	Columns []ColumnSummary  `json:"columns"`
}

// Column returns the summary for a metric
func (g GroupSummary) Column(m experiment.Metric) (ColumnSummary, bool) {
	for _, c := range g.Columns {
		if c.Metric == m {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

// Describe summarises every metric of both groups
func Describe(ds *experiment.Dataset) ([]GroupSummary, error) {
	out := make([]GroupSummary, 0, len(experiment.Groups))
	for _, g := range experiment.Groups {
		gs := GroupSummary{Group: g}
		for _, m := range experiment.AllMetrics {
			col, err := SummarizeColumn(m, ds.Values(g, m))
			if err != nil {
				return nil, fmt.Errorf("describe %s/%s: %w", g, m, err)
			}
			gs.Columns = append(gs.Columns, col)
		}
		out = append(out, gs)
	}
	return out, nil
}

// SummarizeColumn computes count, moments and quartiles of one column
func SummarizeColumn(m experiment.Metric, data []float64) (ColumnSummary, error) {
	summary := ColumnSummary{Metric: m, Count: len(data)}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	summary.Q25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	summary.Q75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	// A single value has no sample deviation
	if len(data) > 1 {
		if summary.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	} else {
		summary.StdDev = math.NaN()
	}

	summary.Skewness = calculateSkewness(data, summary.StdDev)
	summary.Kurtosis = calculateKurtosis(data, summary.StdDev)
	summary.Outliers = detectOutliers(data, summary.Q25, summary.Q75)
	return summary, nil
}
