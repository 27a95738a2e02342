package plot

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"abtest/domain/experiment"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *experiment.Dataset {
	ds := &experiment.Dataset{}
	for i := 0; i < 20; i++ {
		f := float64(i)
		for _, g := range experiment.Groups {
			shift := 0.0
			if g == experiment.GroupTest {
				shift = 5
			}
			obs := experiment.Observation{
				Impressions: 1000 + 37*f,
				Clicks:      50 + 3*f,
				Purchases:   10 + f + shift,
				Earnings:    200 + 11*f + 20*shift,
				Group:       g,
			}
			obs.ConversionRate = obs.Purchases / obs.Impressions
			ds.Observations = append(ds.Observations, obs)
		}
	}
	return ds
}

func TestPairPlot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	r := NewRenderer(dir, nil).WithCellSize(160)

	path, err := r.PairPlot(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PairPlotFile), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	n := len(experiment.AllMetrics)
	assert.Equal(t, n*160, cfg.Width)
	assert.Equal(t, n*160, cfg.Height)
}

func TestLinePlot(t *testing.T) {
	dir := t.TempDir()
	path, err := NewRenderer(dir, nil).LinePlot(sampleDataset())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewRenderer(dir, nil).WithCellSize(120).RenderAll(sampleDataset())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestPlotsRejectEmptyDataset(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)

	_, err := r.PairPlot(&experiment.Dataset{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = r.LinePlot(&experiment.Dataset{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestHistogram(t *testing.T) {
	values := []float64{5, 1, 2, 2, 3, 9, 10}
	edges := binEdges(len(values), values)

	// Sturges: ceil(log2 7) + 1
	require.Len(t, edges, 5)
	assert.Equal(t, 1.0, edges[0])
	assert.Greater(t, edges[4], 10.0)

	counts := Histogram(edges, values)
	total := 0.0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, float64(len(values)), total)
	assert.Equal(t, []float64{5, 1, 2, 2, 3, 9, 10}, values)
}

func TestBinEdgesConstantSample(t *testing.T) {
	edges := binEdges(3, []float64{4, 4, 4})
	assert.Less(t, edges[0], 4.0)
	assert.Greater(t, edges[len(edges)-1], 4.0)
	assert.Equal(t, []float64{0, 3, 0}, Histogram(edges, []float64{4, 4, 4}))
}

func TestStepOutline(t *testing.T) {
	xs, ys := stepOutline([]float64{0, 1, 2}, []float64{3, 1})
	assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, xs)
	assert.Equal(t, []float64{0, 3, 3, 1, 1, 0}, ys)
}

func TestSortedPairs(t *testing.T) {
	x, y := sortedPairs([]float64{0.3, 0.1, 0.2}, []float64{30, 10, 20})
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, x)
	assert.Equal(t, []float64{10, 20, 30}, y)
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{10, 20})
	assert.InDelta(t, 9.5, r.Min, 1e-12)
	assert.InDelta(t, 20.5, r.Max, 1e-12)

	r = paddedRange([]float64{0, 0})
	assert.Equal(t, -1.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	r = paddedRange()
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)
}
