package config

import (
	"testing"

	"abtest/internal/assumption"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"AB_INPUT_FILE", "AB_CONTROL_SHEET", "AB_TEST_SHEET", "AB_ALPHA",
		"AB_LEVENE_CENTER", "AB_PLOTS_DIR", "AB_PLOTS_ENABLED", "AB_REPORT_FILE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "datasets/ab_testing.xlsx", cfg.Input.File)
	assert.Equal(t, "Control Group", cfg.Input.ControlSheet)
	assert.Equal(t, "Test Group", cfg.Input.TestSheet)
	assert.Equal(t, 0.05, cfg.Analysis.Alpha)
	assert.Equal(t, assumption.CenterMedian, cfg.Analysis.LeveneCenter)
	assert.Equal(t, "plots", cfg.Output.PlotsDir)
	assert.True(t, cfg.Output.PlotsEnabled)
	assert.Empty(t, cfg.Output.ReportFile)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AB_INPUT_FILE", "/data/bids.xlsx")
	t.Setenv("AB_ALPHA", "0.01")
	t.Setenv("AB_LEVENE_CENTER", "MEAN")
	t.Setenv("AB_PLOTS_ENABLED", "false")
	t.Setenv("AB_REPORT_FILE", "out/report.html")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/bids.xlsx", cfg.Input.File)
	assert.Equal(t, 0.01, cfg.Analysis.Alpha)
	assert.Equal(t, assumption.CenterMean, cfg.Analysis.LeveneCenter)
	assert.False(t, cfg.Output.PlotsEnabled)
	assert.Equal(t, "out/report.html", cfg.Output.ReportFile)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"alpha above one", "AB_ALPHA", "1.5"},
		{"alpha zero", "AB_ALPHA", "0"},
		{"unknown center", "AB_LEVENE_CENTER", "trimmed"},
		{"same sheet names", "AB_TEST_SHEET", "Control Group"},
		{"alpha not a number", "AB_ALPHA", "five percent"},
		{"plots flag not a boolean", "AB_PLOTS_ENABLED", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AB_CONTROL_SHEET", "")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestValidateAfterOverride(t *testing.T) {
	cfg := &Config{
		Input:    InputConfig{File: "a.xlsx", ControlSheet: "A", TestSheet: "B"},
		Analysis: AnalysisConfig{Alpha: 0.05, LeveneCenter: assumption.CenterMedian},
		Output:   OutputConfig{PlotsEnabled: true, PlotsDir: ""},
	}
	assert.Error(t, cfg.Validate())

	cfg.Output.PlotsEnabled = false
	assert.NoError(t, cfg.Validate())
}
