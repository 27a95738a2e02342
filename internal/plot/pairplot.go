package plot

import (
	"image"
	"image/draw"
	"math"
	"sort"

	"abtest/domain/experiment"
	"abtest/internal/errors"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PairPlot writes a scatter matrix of every metric coloured by group.
// Diagonal cells hold per-group histograms.
func (r *Renderer) PairPlot(ds *experiment.Dataset) (string, error) {
	if ds.Len() == 0 {
		return "", errors.InvalidInput("pair plot needs at least one observation", nil)
	}

	metrics := experiment.AllMetrics
	k := len(metrics)
	size := r.cellSize

	grid := image.NewRGBA(image.Rect(0, 0, k*size, k*size))
	draw.Draw(grid, grid.Bounds(), image.White, image.Point{}, draw.Src)

	for row, ym := range metrics {
		for col, xm := range metrics {
			var graph chart.Chart
			if row == col {
				graph = histogramChart(ds, xm, size)
			} else {
				graph = scatterChart(ds, xm, ym, size)
			}
			if row == 0 && col == 0 {
				graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}
			}

			cell, err := renderImage(graph)
			if err != nil {
				return "", errors.ComputationError("render "+string(ym)+" vs "+string(xm), err)
			}
			at := image.Rect(col*size, row*size, (col+1)*size, (row+1)*size)
			draw.Draw(grid, at, cell, cell.Bounds().Min, draw.Over)
		}
	}

	path, err := r.path(PairPlotFile)
	if err != nil {
		return "", err
	}
	if err := writeImage(path, grid); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

func scatterChart(ds *experiment.Dataset, xm, ym experiment.Metric, size int) chart.Chart {
	var series []chart.Series
	var xs, ys [][]float64
	for _, g := range experiment.Groups {
		x, y := ds.Values(g, xm), ds.Values(g, ym)
		if len(x) == 0 {
			continue
		}
		xs, ys = append(xs, x), append(ys, y)
		series = append(series, chart.ContinuousSeries{
			Name: g.String(),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    2.5,
				DotColor:    groupColors[g].WithAlpha(180),
			},
			XValues: x,
			YValues: y,
		})
	}

	return chart.Chart{
		Width:  size,
		Height: size,
		XAxis: chart.XAxis{
			Name:           xm.Label(),
			Range:          paddedRange(xs...),
			ValueFormatter: valueFormatter(xm),
		},
		YAxis: chart.YAxis{
			Name:           ym.Label(),
			Range:          paddedRange(ys...),
			ValueFormatter: valueFormatter(ym),
		},
		Series: series,
	}
}

func histogramChart(ds *experiment.Dataset, m experiment.Metric, size int) chart.Chart {
	control := ds.Values(experiment.GroupControl, m)
	test := ds.Values(experiment.GroupTest, m)
	edges := binEdges(len(control)+len(test), control, test)

	var series []chart.Series
	var counts [][]float64
	for _, g := range experiment.Groups {
		x, y := stepOutline(edges, Histogram(edges, ds.Values(g, m)))
		counts = append(counts, y)
		series = append(series, chart.ContinuousSeries{
			Name: g.String(),
			Style: chart.Style{
				StrokeColor: groupColors[g],
				StrokeWidth: 1.5,
				FillColor:   groupColors[g].WithAlpha(64),
			},
			XValues: x,
			YValues: y,
		})
	}

	yRange := paddedRange(counts...)
	yRange.Min = 0

	return chart.Chart{
		Width:  size,
		Height: size,
		XAxis: chart.XAxis{
			Name:           m.Label(),
			Range:          &chart.ContinuousRange{Min: edges[0], Max: edges[len(edges)-1]},
			ValueFormatter: valueFormatter(m),
		},
		YAxis: chart.YAxis{
			Name:  "count",
			Range: yRange,
		},
		Series: series,
	}
}

// binEdges spans the pooled range with Sturges' rule
func binEdges(n int, samples ...[]float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}

	bins := int(math.Ceil(math.Log2(float64(n)))) + 1
	if bins < 1 {
		bins = 1
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram takes half-open bins
	edges[bins] = math.Nextafter(hi, math.Inf(1))
	return edges
}

// Histogram counts values into the bins delimited by edges
func Histogram(edges, values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Histogram(nil, edges, sorted, nil)
}

// stepOutline turns bin counts into a closed staircase polyline
func stepOutline(edges, counts []float64) (xs, ys []float64) {
	xs = append(xs, edges[0])
	ys = append(ys, 0)
	for i, c := range counts {
		xs = append(xs, edges[i], edges[i+1])
		ys = append(ys, c, c)
	}
	xs = append(xs, edges[len(edges)-1])
	ys = append(ys, 0)
	return xs, ys
}
