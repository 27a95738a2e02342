package plot

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"abtest/domain/experiment"
	"abtest/internal"
	"abtest/internal/errors"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// File names written into the plots directory
const (
	PairPlotFile = "pairplot.png"
	LinePlotFile = "lineplot.png"
)

var groupColors = map[experiment.Group]drawing.Color{
	experiment.GroupControl: drawing.ColorFromHex("1f77b4"),
	experiment.GroupTest:    drawing.ColorFromHex("ff7f0e"),
}

// Renderer writes the analysis charts as PNG files
type Renderer struct {
	dir      string
	cellSize int
	logger   *internal.Logger
}

// NewRenderer creates a renderer writing into dir
func NewRenderer(dir string, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{dir: dir, cellSize: 320, logger: logger}
}

// WithCellSize sets the pixel size of one scatter matrix cell
func (r *Renderer) WithCellSize(px int) *Renderer {
	if px > 0 {
		r.cellSize = px
	}
	return r
}

// Dir returns the output directory
func (r *Renderer) Dir() string { return r.dir }

// RenderAll writes the pair plot and the line plot, returning their paths
func (r *Renderer) RenderAll(ds *experiment.Dataset) ([]string, error) {
	start := time.Now()

	pair, err := r.PairPlot(ds)
	if err != nil {
		return nil, err
	}
	line, err := r.LinePlot(ds)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("[Plot] Rendered %s and %s in %s", pair, line, time.Since(start).Round(time.Millisecond))
	return []string{pair, line}, nil
}

func (r *Renderer) path(name string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create plots directory %s", r.dir)
	}
	return filepath.Join(r.dir, name), nil
}

// renderImage rasterises a chart so it can be composed into a grid
func renderImage(graph chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func writeChart(path string, graph chart.Chart) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func writeImage(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// paddedRange keeps go-chart away from zero-width axes
func paddedRange(values ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func valueFormatter(m experiment.Metric) chart.ValueFormatter {
	format := "%.0f"
	if m == experiment.MetricConversionRate {
		format = "%.3f"
	}
	return func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, format)
	}
}
