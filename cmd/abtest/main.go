package main

import (
	"fmt"
	"os"

	"abtest/app"
	"abtest/internal"
	"abtest/internal/assumption"
	"abtest/internal/config"
	"abtest/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "abtest",
		Short: "Compare maximum bidding against average bidding",
		Long: `Analyse a two-group bidding experiment: normality and variance checks,
a two-sample significance test per metric, plots and a recommendation.

Configuration is read from the environment (AB_INPUT_FILE, AB_ALPHA, ...)
and an optional .env file; flags override it.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().String("control-sheet", "", "Sheet holding the control group (default from AB_CONTROL_SHEET)")
	rootCmd.PersistentFlags().String("test-sheet", "", "Sheet holding the test group (default from AB_TEST_SHEET)")

	rootCmd.AddCommand(
		newRunCmd(),
		newDescribeCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var (
		alpha        float64
		plotsDir     string
		noPlots      bool
		reportFile   string
		leveneCenter string
	)

	cmd := &cobra.Command{
		Use:   "run [workbook]",
		Short: "Run the whole analysis",
		Long: `Load both group sheets, check the test assumptions, run the selected
two-sample test for purchase, conversion rate and earning, write the plots
and print a recommendation.

Example: abtest run datasets/ab_testing.xlsx --alpha 0.05 --report report.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("alpha") {
				cfg.Analysis.Alpha = alpha
			}
			if flags.Changed("plots-dir") {
				cfg.Output.PlotsDir = plotsDir
			}
			if noPlots {
				cfg.Output.PlotsEnabled = false
			}
			if flags.Changed("report") {
				cfg.Output.ReportFile = reportFile
			}
			if flags.Changed("levene-center") {
				cfg.Analysis.LeveneCenter = assumption.Center(leveneCenter)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			svc, err := app.NewAnalysisService(cfg, cmd.OutOrStdout(), newLogger(cfg))
			if err != nil {
				return err
			}
			_, err = svc.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level for every check")
	cmd.Flags().StringVar(&plotsDir, "plots-dir", "plots", "Directory for pairplot.png and lineplot.png")
	cmd.Flags().BoolVar(&noPlots, "no-plots", false, "Skip writing plots")
	cmd.Flags().StringVar(&reportFile, "report", "", "Write a report (.md, or .html for a rendered page)")
	cmd.Flags().StringVar(&leveneCenter, "levene-center", "median", "Levene centring: median|mean")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [workbook]",
		Short: "Print descriptive statistics of both groups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			cfg.Output.PlotsEnabled = false

			svc, err := app.NewAnalysisService(cfg, cmd.OutOrStdout(), newLogger(cfg))
			if err != nil {
				return err
			}
			_, err = svc.Describe(cmd.Context())
			return err
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		out  string
		rows int
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a sample workbook with the shipped group moments",
		Long: `Write a deterministic two-sheet workbook whose columns have the means and
standard deviations of the reference bidding dataset. A .csv path writes one
file per sheet next to it.

Example: abtest generate --out datasets/ab_testing.xlsx --rows 40 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := testkit.DefaultGeneratorConfig()
			gen.Rows = rows
			gen.Seed = seed
			if sheet, _ := cmd.Flags().GetString("control-sheet"); sheet != "" {
				gen.ControlSheet = sheet
			}
			if sheet, _ := cmd.Flags().GetString("test-sheet"); sheet != "" {
				gen.TestSheet = sheet
			}

			sheets, err := testkit.WriteWorkbook(out, gen)
			if err != nil {
				return err
			}
			for _, s := range sheets {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to sheet %q\n", len(s.Rows), s.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "workbook: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "datasets/ab_testing.xlsx", "Output workbook (.xlsx or .csv)")
	cmd.Flags().IntVar(&rows, "rows", 40, "Rows per group")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for row order")

	return cmd
}

// loadConfig reads the environment and applies the shared overrides
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		cfg.Input.File = args[0]
	}
	if sheet, _ := cmd.Flags().GetString("control-sheet"); sheet != "" {
		cfg.Input.ControlSheet = sheet
	}
	if sheet, _ := cmd.Flags().GetString("test-sheet"); sheet != "" {
		cfg.Input.TestSheet = sheet
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) *internal.Logger {
	return internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
}
