package config

import (
	"fmt"
	"os"
	"strconv"

	"abtest/internal/assumption"
	"abtest/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig
	Analysis AnalysisConfig
	Output   OutputConfig
	LogLevel string
}

// InputConfig locates the workbook and its group sheets
type InputConfig struct {
	File         string
	ControlSheet string
	TestSheet    string
}

// AnalysisConfig holds statistical settings
type AnalysisConfig struct {
	Alpha        float64
	LeveneCenter assumption.Center
}

// OutputConfig holds plot and report destinations
type OutputConfig struct {
	PlotsDir     string
	PlotsEnabled bool
	ReportFile   string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	analysis, err := loadAnalysisConfig()
	if err != nil {
		return nil, err
	}
	output, err := loadOutputConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Input:    *loadInputConfig(),
		Analysis: *analysis,
		Output:   *output,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadInputConfig() *InputConfig {
	return &InputConfig{
		File:         getEnvOrDefault("AB_INPUT_FILE", "datasets/ab_testing.xlsx"),
		ControlSheet: getEnvOrDefault("AB_CONTROL_SHEET", "Control Group"),
		TestSheet:    getEnvOrDefault("AB_TEST_SHEET", "Test Group"),
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	alpha, err := getEnvFloatOrDefault("AB_ALPHA", 0.05)
	if err != nil {
		return nil, err
	}
	center, err := assumption.ParseCenter(os.Getenv("AB_LEVENE_CENTER"))
	if err != nil {
		return nil, errors.ConfigInvalid("AB_LEVENE_CENTER: " + err.Error())
	}
	return &AnalysisConfig{Alpha: alpha, LeveneCenter: center}, nil
}

func loadOutputConfig() (*OutputConfig, error) {
	plotsEnabled, err := getEnvBoolOrDefault("AB_PLOTS_ENABLED", true)
	if err != nil {
		return nil, err
	}
	return &OutputConfig{
		PlotsDir:     getEnvOrDefault("AB_PLOTS_DIR", "plots"),
		PlotsEnabled: plotsEnabled,
		ReportFile:   getEnvOrDefault("AB_REPORT_FILE", ""),
	}, nil
}

// Validate checks field ranges. It is re-run after CLI flags override values.
func (c *Config) Validate() error {
	if c.Input.File == "" {
		return errors.ConfigInvalid("input file is required")
	}
	if c.Input.ControlSheet == "" || c.Input.TestSheet == "" {
		return errors.ConfigInvalid("control and test sheet names are required")
	}
	if c.Input.ControlSheet == c.Input.TestSheet {
		return errors.ConfigInvalid("control and test sheets must differ")
	}
	if !(c.Analysis.Alpha > 0 && c.Analysis.Alpha < 1) {
		return errors.ConfigInvalid("alpha must be in (0, 1)")
	}
	if _, err := assumption.ParseCenter(string(c.Analysis.LeveneCenter)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Output.PlotsEnabled && c.Output.PlotsDir == "" {
		return errors.ConfigInvalid("plots directory is required when plots are enabled")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a number", key, value))
	}
	return floatValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a boolean", key, value))
	}
	return boolValue, nil
}
