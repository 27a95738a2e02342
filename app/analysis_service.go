package app

import (
	"context"
	"io"
	"time"

	"abtest/adapters/excel"
	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/domain/run"
	"abtest/internal"
	"abtest/internal/assumption"
	"abtest/internal/config"
	"abtest/internal/dataset"
	"abtest/internal/errors"
	"abtest/internal/hypothesis"
	"abtest/internal/plot"
	"abtest/internal/profiling"
	"abtest/internal/report"
)

// AnalysisService runs the load, check, test and report pipeline once per call
type AnalysisService struct {
	config   *config.Config
	loader   *dataset.Loader
	tester   *hypothesis.Tester
	renderer *plot.Renderer
	printer  *report.Printer
	logger   *internal.Logger
}

// NewAnalysisService wires the pipeline stages from configuration.
// Console output goes to out; logs go to the logger.
func NewAnalysisService(cfg *config.Config, out io.Writer, logger *internal.Logger) (*AnalysisService, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	center, err := assumption.ParseCenter(string(cfg.Analysis.LeveneCenter))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	s := &AnalysisService{
		config: cfg,
		loader: dataset.NewLoader(excel.ExcelConfig{
			FilePath:     cfg.Input.File,
			ControlSheet: cfg.Input.ControlSheet,
			TestSheet:    cfg.Input.TestSheet,
		}, logger),
		tester:  hypothesis.NewTester(cfg.Analysis.Alpha, center),
		printer: report.NewPrinter(out),
		logger:  logger,
	}
	if cfg.Output.PlotsEnabled {
		s.renderer = plot.NewRenderer(cfg.Output.PlotsDir, logger)
	}
	return s, nil
}

// Describe loads the dataset and prints its descriptive statistics
func (s *AnalysisService) Describe(ctx context.Context) ([]profiling.GroupSummary, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := profiling.Describe(ds)
	if err != nil {
		return nil, errors.ComputationError("describe dataset", err)
	}
	s.printer.PrintSummary(summaries)
	return summaries, nil
}

// Run executes the whole analysis and returns the report
func (s *AnalysisService) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()

	rep := &report.Report{
		RunID:        core.NewRunID(),
		GeneratedAt:  start.UTC(),
		Input:        s.config.Input.File,
		ControlSheet: s.config.Input.ControlSheet,
		TestSheet:    s.config.Input.TestSheet,
		Alpha:        s.tester.Alpha(),
		LeveneCenter: string(s.tester.Center()),
	}
	s.logger.Info("[Analysis] Run %s started for %s", rep.RunID, rep.Input)

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	rep.Rows = ds.Len()

	manifest, err := s.manifest(rep)
	if err != nil {
		return nil, err
	}
	rep.Fingerprint = manifest.Fingerprint.Fingerprint
	s.logger.Debug("[Analysis] Run %s fingerprint %s (input %s)",
		rep.RunID, manifest.Fingerprint.Fingerprint.Short(), manifest.Fingerprint.InputHash.Short())
	s.printer.PrintRun(rep)

	if rep.Summaries, err = profiling.Describe(ds); err != nil {
		return nil, errors.ComputationError("describe dataset", err)
	}
	s.printer.PrintSummary(rep.Summaries)

	for _, m := range experiment.AnalyzedMetrics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stageStart := time.Now()
		c, err := s.tester.Compare(m, ds.Values(experiment.GroupControl, m), ds.Values(experiment.GroupTest, m))
		if err != nil {
			return nil, errors.Wrapf(err, "analyse %s", m)
		}
		s.printer.PrintAssumptions(c.Assumptions)
		s.printer.PrintComparison(c)
		rep.Comparisons = append(rep.Comparisons, c)

		s.logger.Debug("[Analysis] %s: %s, statistic %.4f, p %.4f (%s)",
			m, c.Kind, c.Result.Statistic, c.Result.PValue, time.Since(stageStart).Round(time.Microsecond))
	}

	if s.renderer != nil {
		if rep.Plots, err = s.renderer.RenderAll(ds); err != nil {
			return nil, errors.Wrap(err, "render plots")
		}
		s.printer.PrintPlots(rep.Plots)
	}

	rep.Recommend = report.Recommend(rep.Comparisons)
	s.printer.PrintRecommendation(rep.Recommend)

	if path := s.config.Output.ReportFile; path != "" {
		if err := rep.WriteFile(path); err != nil {
			return nil, errors.Wrapf(err, "write report %s", path)
		}
		s.logger.Info("[Analysis] Report written to %s", path)
	}

	s.logger.Info("[Analysis] Run %s finished in %s", rep.RunID, time.Since(start).Round(time.Millisecond))
	return rep, nil
}

// manifest fingerprints the input bytes and the settings of this run
func (s *AnalysisService) manifest(rep *report.Report) (*run.Manifest, error) {
	inputHash, err := run.HashFiles(s.loader.SourceFiles()...)
	if err != nil {
		return nil, errors.LoadError("hash input files", err)
	}

	fp := run.NewFingerprint(inputHash, rep.ControlSheet, rep.TestSheet, rep.Alpha, rep.LeveneCenter, run.CodeVersion)
	m := run.NewManifest(rep.RunID, rep.Input, fp)
	if err := m.Validate(); err != nil {
		return nil, errors.InternalError(err.Error())
	}
	return m, nil
}
