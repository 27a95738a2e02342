package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"

	"abtest/adapters/excel"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Moments is the target mean and sample standard deviation of a column
type Moments struct {
	Mean   float64
	StdDev float64
}

// GroupProfile holds per-column targets for one bidding group
type GroupProfile struct {
	Impression Moments
	Click      Moments
	Purchase   Moments
	Earning    Moments
}

// GeneratorConfig configures a synthetic bidding workbook
type GeneratorConfig struct {
	Rows         int
	Seed         int64
	ControlSheet string
	TestSheet    string
	Control      GroupProfile
	Test         GroupProfile
}

// DefaultGeneratorConfig mirrors the moments of the shipped 40-row workbook
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rows:         40,
		Seed:         42,
		ControlSheet: "Control Group",
		TestSheet:    "Test Group",
		Control: GroupProfile{
			Impression: Moments{Mean: 101711.44907, StdDev: 20302.15786},
			Click:      Moments{Mean: 5100.65737, StdDev: 1329.98550},
			Purchase:   Moments{Mean: 550.89406, StdDev: 134.10820},
			Earning:    Moments{Mean: 1908.56830, StdDev: 302.91778},
		},
		Test: GroupProfile{
			Impression: Moments{Mean: 120512.41176, StdDev: 18807.44871},
			Click:      Moments{Mean: 3967.54976, StdDev: 923.09507},
			Purchase:   Moments{Mean: 582.10610, StdDev: 161.15251},
			Earning:    Moments{Mean: 2514.89073, StdDev: 282.73085},
		},
	}
}

// Headers of a generated group sheet
var Headers = []string{"Impression", "Click", "Purchase", "Earning"}

// Generate builds both group sheets. Each column is a set of normal scores
// rescaled to the exact target moments, then shuffled with the seeded RNG,
// so the output is identical for identical configs.
func Generate(cfg GeneratorConfig) ([]excel.SheetData, error) {
	if cfg.Rows < 3 {
		return nil, fmt.Errorf("rows must be >= 3, got %d", cfg.Rows)
	}
	if cfg.ControlSheet == "" || cfg.TestSheet == "" {
		return nil, fmt.Errorf("sheet names are required")
	}

	scores, err := normalScores(cfg.Rows)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	sheets := make([]excel.SheetData, 0, 2)
	for _, g := range []struct {
		name    string
		profile GroupProfile
	}{
		{cfg.ControlSheet, cfg.Control},
		{cfg.TestSheet, cfg.Test},
	} {
		columns := [][]float64{
			scaleColumn(scores, g.profile.Impression, rng),
			scaleColumn(scores, g.profile.Click, rng),
			scaleColumn(scores, g.profile.Purchase, rng),
			scaleColumn(scores, g.profile.Earning, rng),
		}
		for _, col := range columns {
			if minValue, _ := stats.Min(col); minValue <= 0 {
				return nil, fmt.Errorf("sheet %q: profile produces non-positive values (min %.3f)", g.name, minValue)
			}
		}

		rows := make([][]interface{}, cfg.Rows)
		for i := range rows {
			rows[i] = []interface{}{columns[0][i], columns[1][i], columns[2][i], columns[3][i]}
		}
		sheets = append(sheets, excel.SheetData{Name: g.name, Headers: Headers, Rows: rows})
	}

	return sheets, nil
}

// WriteWorkbook generates and writes the sheets; a .csv path writes one CSV per sheet
func WriteWorkbook(path string, cfg GeneratorConfig) ([]excel.SheetData, error) {
	sheets, err := Generate(cfg)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = excel.WriteCSVSheets(path, sheets)
	} else {
		err = excel.WriteWorkbook(path, sheets)
	}
	if err != nil {
		return nil, err
	}
	return sheets, nil
}

// normalScores returns Blom positions mapped through the normal quantile,
// standardised to zero mean and unit sample standard deviation.
func normalScores(n int) ([]float64, error) {
	z := make([]float64, n)
	for i := range z {
		p := (float64(i+1) - 0.375) / (float64(n) + 0.25)
		z[i] = distuv.UnitNormal.Quantile(p)
	}

	mean, err := stats.Mean(z)
	if err != nil {
		return nil, err
	}
	sd, err := stats.StandardDeviationSample(z)
	if err != nil {
		return nil, err
	}
	for i := range z {
		z[i] = (z[i] - mean) / sd
	}
	return z, nil
}

func scaleColumn(scores []float64, m Moments, rng *rand.Rand) []float64 {
	out := make([]float64, len(scores))
	for i, j := range rng.Perm(len(scores)) {
		out[i] = round(m.Mean+m.StdDev*scores[j], 6)
	}
	return out
}

func round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}
