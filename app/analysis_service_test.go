package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abtest/domain/experiment"
	"abtest/internal"
	"abtest/internal/assumption"
	"abtest/internal/config"
	"abtest/internal/errors"
	"abtest/internal/hypothesis"
	"abtest/internal/plot"
	"abtest/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, input)
	_, err := testkit.WriteWorkbook(path, testkit.DefaultGeneratorConfig())
	require.NoError(t, err)

	return &config.Config{
		Input: config.InputConfig{
			File:         path,
			ControlSheet: "Control Group",
			TestSheet:    "Test Group",
		},
		Analysis: config.AnalysisConfig{Alpha: 0.05, LeveneCenter: assumption.CenterMedian},
		Output: config.OutputConfig{
			PlotsDir:     filepath.Join(dir, "plots"),
			PlotsEnabled: true,
			ReportFile:   filepath.Join(dir, "report.html"),
		},
		LogLevel: "ERROR",
	}
}

func quietLogger() *internal.Logger {
	return internal.NewLoggerWithWriter(internal.LogLevelError, &bytes.Buffer{})
}

func comparison(t *testing.T, cs []*hypothesis.Comparison, m experiment.Metric) *hypothesis.Comparison {
	t.Helper()
	for _, c := range cs {
		if c.Metric == m {
			return c
		}
	}
	t.Fatalf("no comparison for %s", m)
	return nil
}

func TestRunRegression(t *testing.T) {
	cfg := testConfig(t, "ab_testing.xlsx")
	var out bytes.Buffer

	svc, err := NewAnalysisService(cfg, &out, quietLogger())
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, rep.RunID.IsEmpty())
	assert.Equal(t, 80, rep.Rows)
	require.Len(t, rep.Comparisons, len(experiment.AnalyzedMetrics))

	earning := comparison(t, rep.Comparisons, experiment.MetricEarning)
	assert.Equal(t, experiment.StudentT, earning.Kind)
	assert.Equal(t, experiment.Reject, earning.Result.Decision)
	assert.InDelta(t, -9.25, earning.Result.Statistic, 0.05)

	purchase := comparison(t, rep.Comparisons, experiment.MetricPurchase)
	assert.Equal(t, experiment.StudentT, purchase.Kind)
	assert.Equal(t, experiment.FailToReject, purchase.Result.Decision)
	assert.InDelta(t, 0.35, purchase.Result.PValue, 0.02)

	assert.True(t, rep.Recommend.Switch)
	assert.Equal(t, experiment.GroupTest, rep.Recommend.Winner)

	console := out.String()
	assert.Contains(t, console, "Test Stat = ")
	assert.Contains(t, console, "Switch to average bidding")
	assert.Equal(t, 4*len(experiment.AnalyzedMetrics), strings.Count(console, "Test Stat = "))

	assert.FileExists(t, filepath.Join(cfg.Output.PlotsDir, plot.PairPlotFile))
	assert.FileExists(t, filepath.Join(cfg.Output.PlotsDir, plot.LinePlotFile))

	page, err := os.ReadFile(cfg.Output.ReportFile)
	require.NoError(t, err)
	assert.Contains(t, string(page), rep.RunID.String())
	assert.Contains(t, string(page), `src="plots/pairplot.png"`)
}

func TestRunCSVWithoutPlots(t *testing.T) {
	cfg := testConfig(t, "ab_testing.csv")
	cfg.Output.PlotsEnabled = false
	cfg.Output.ReportFile = ""

	svc, err := NewAnalysisService(cfg, &bytes.Buffer{}, quietLogger())
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rep.Plots)
	assert.NoDirExists(t, cfg.Output.PlotsDir)
	assert.Equal(t, experiment.Reject, comparison(t, rep.Comparisons, experiment.MetricEarning).Result.Decision)
}

func TestDescribe(t *testing.T) {
	cfg := testConfig(t, "ab_testing.xlsx")
	var out bytes.Buffer

	svc, err := NewAnalysisService(cfg, &out, quietLogger())
	require.NoError(t, err)

	summaries, err := svc.Describe(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	earning, ok := summaries[1].Column(experiment.MetricEarning)
	require.True(t, ok)
	assert.InDelta(t, 2514.89073, earning.Mean, 1e-3)
	assert.Contains(t, out.String(), "Descriptive statistics")
	assert.NotContains(t, out.String(), "Test Stat = ")
}

func TestRunErrors(t *testing.T) {
	cfg := testConfig(t, "ab_testing.xlsx")
	cfg.Input.File = filepath.Join(t.TempDir(), "missing.xlsx")
	svc, err := NewAnalysisService(cfg, &bytes.Buffer{}, quietLogger())
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	cfg = testConfig(t, "ab_testing.xlsx")
	cfg.Analysis.LeveneCenter = "trimmed"
	_, err = NewAnalysisService(cfg, &bytes.Buffer{}, quietLogger())
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	cfg = testConfig(t, "ab_testing.xlsx")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc, err = NewAnalysisService(cfg, &bytes.Buffer{}, quietLogger())
	require.NoError(t, err)
	_, err = svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFingerprintIsReproducible(t *testing.T) {
	cfg := testConfig(t, "ab_testing.xlsx")
	cfg.Output.PlotsEnabled = false
	cfg.Output.ReportFile = ""

	svc, err := NewAnalysisService(cfg, &bytes.Buffer{}, quietLogger())
	require.NoError(t, err)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	second, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, first.Fingerprint)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.RunID, second.RunID)

	cfg.Analysis.Alpha = 0.01
	svc, err = NewAnalysisService(cfg, &bytes.Buffer{}, quietLogger())
	require.NoError(t, err)
	third, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
}
