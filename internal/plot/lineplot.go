package plot

import (
	"sort"

	"abtest/domain/experiment"
	"abtest/internal/errors"

	chart "github.com/wcharczuk/go-chart/v2"
)

// LinePlot writes earnings against conversion rate, one line per group
func (r *Renderer) LinePlot(ds *experiment.Dataset) (string, error) {
	if ds.Len() == 0 {
		return "", errors.InvalidInput("line plot needs at least one observation", nil)
	}

	var series []chart.Series
	var xs, ys [][]float64
	for _, g := range experiment.Groups {
		x, y := sortedPairs(ds.Values(g, experiment.MetricConversionRate), ds.Values(g, experiment.MetricEarning))
		if len(x) == 0 {
			continue
		}
		xs, ys = append(xs, x), append(ys, y)
		series = append(series, chart.ContinuousSeries{
			Name: g.String() + " (" + g.Strategy() + ")",
			Style: chart.Style{
				StrokeColor: groupColors[g],
				StrokeWidth: 2,
				DotColor:    groupColors[g],
				DotWidth:    3,
			},
			XValues: x,
			YValues: y,
		})
	}

	graph := chart.Chart{
		Title:  "Earning by conversion rate",
		Width:  1280,
		Height: 720,
		Background: chart.Style{
			Padding: chart.Box{Top: 50},
		},
		XAxis: chart.XAxis{
			Name:           experiment.MetricConversionRate.Label(),
			Range:          paddedRange(xs...),
			ValueFormatter: valueFormatter(experiment.MetricConversionRate),
		},
		YAxis: chart.YAxis{
			Name:           experiment.MetricEarning.Label(),
			Range:          paddedRange(ys...),
			ValueFormatter: valueFormatter(experiment.MetricEarning),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	path, err := r.path(LinePlotFile)
	if err != nil {
		return "", err
	}
	if err := writeChart(path, graph); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// sortedPairs orders (x, y) pairs by x, the way a line plot reads
func sortedPairs(x, y []float64) ([]float64, []float64) {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	sx := make([]float64, len(x))
	sy := make([]float64, len(y))
	for i, j := range idx {
		sx[i], sy[i] = x[j], y[j]
	}
	return sx, sy
}
