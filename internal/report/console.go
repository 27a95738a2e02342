package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"abtest/domain/experiment"
	"abtest/internal/assumption"
	"abtest/internal/hypothesis"
	"abtest/internal/profiling"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorReject  = lipgloss.Color("#E74C3C")
	colorAccept  = lipgloss.Color("#2CD7C7")
	colorMuted   = lipgloss.Color("#2C4A54")
	colorWarning = lipgloss.Color("#F4D03F")
)

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	reject lipgloss.Style
	accept lipgloss.Style
	muted  lipgloss.Style
	box    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(colorAccent),
		label:  r.NewStyle().Bold(true),
		reject: r.NewStyle().Foreground(colorReject),
		accept: r.NewStyle().Foreground(colorAccept),
		muted:  r.NewStyle().Foreground(colorMuted),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarning).
			Padding(0, 1),
	}
}

// Printer writes the analysis to a terminal or any writer.
// Colours are dropped automatically when w is not a terminal.
type Printer struct {
	w      io.Writer
	styles styles
}

// NewPrinter creates a printer for w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: newStyles(lipgloss.NewRenderer(w))}
}

// Header prints an underlined section title
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.styles.title.Render(title))
	fmt.Fprintln(p.w, p.styles.title.Render(strings.Repeat("=", len(title))))
}

// PrintRun prints the run metadata
func (p *Printer) PrintRun(r *Report) {
	p.Header("Bidding strategy A/B test")
	fmt.Fprintf(p.w, "  Run:          %s\n", r.RunID)
	if r.Fingerprint != "" {
		fmt.Fprintf(p.w, "  Fingerprint:  %s\n", r.Fingerprint.Short())
	}
	fmt.Fprintf(p.w, "  Input:        %s\n", r.Input)
	fmt.Fprintf(p.w, "  Control:      %s (%s)\n", r.ControlSheet, experiment.GroupControl.Strategy())
	fmt.Fprintf(p.w, "  Test:         %s (%s)\n", r.TestSheet, experiment.GroupTest.Strategy())
	fmt.Fprintf(p.w, "  Alpha:        %.4g\n", r.Alpha)
	fmt.Fprintf(p.w, "  Levene:       %s-centred\n", r.LeveneCenter)
}

// PrintSummary prints the descriptive statistics as an aligned table
func (p *Printer) PrintSummary(summaries []profiling.GroupSummary) {
	p.Header("Descriptive statistics")

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "metric\tgroup\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, m := range experiment.AllMetrics {
		for _, gs := range summaries {
			c, ok := gs.Column(m)
			if !ok {
				continue
			}
			f := numberFormat(m)
			fmt.Fprintf(tw, "%s\t%s\t%d\t"+f+"\t"+f+"\t"+f+"\t"+f+"\t"+f+"\t"+f+"\t"+f+"\t\n",
				m, gs.Group, c.Count, c.Mean, c.StdDev, c.Min, c.Q25, c.Median, c.Q75, c.Max)
		}
	}
	tw.Flush()
}

// PrintAssumptions prints both normality checks and the variance check of one metric
func (p *Printer) PrintAssumptions(a *assumption.Assumptions) {
	p.Header("Assumptions: " + a.Metric.Label())

	p.printCheck(fmt.Sprintf("Shapiro-Wilk normality | %s | %s", a.Metric, groupLabel(experiment.GroupControl)),
		a.NormalityControl, "normality rejected", "normality not rejected")
	p.printCheck(fmt.Sprintf("Shapiro-Wilk normality | %s | %s", a.Metric, groupLabel(experiment.GroupTest)),
		a.NormalityTest, "normality rejected", "normality not rejected")
	p.printCheck(fmt.Sprintf("Levene variance homogeneity (%s) | %s | control vs test", strings.TrimPrefix(a.Variance.Name, "levene_"), a.Metric),
		a.Variance, "variances differ", "variances homogeneous")

	fmt.Fprintf(p.w, "  %s %s\n", p.styles.muted.Render("selected:"), a.SelectTest().Title())
}

// PrintComparison prints the significance test of one metric
func (p *Printer) PrintComparison(c *hypothesis.Comparison) {
	p.Header("Hypothesis test: " + c.Metric.Label())

	p.printCheck(fmt.Sprintf("%s | %s | control vs test", c.Kind.Title(), c.Metric),
		c.Result, "H0 rejected: the groups differ", "H0 not rejected: no significant difference")

	f := numberFormat(c.Metric)
	fmt.Fprintf(p.w, "  mean control = "+f+", mean test = "+f+", lift = %s\n",
		c.MeanControl, c.MeanTest, formatLift(c.Lift()))
	zero := "includes 0"
	if !c.CI.Contains(0) {
		zero = "excludes 0"
	}
	fmt.Fprintf(p.w, "  Cohen's d = %.4f (%s), %.0f%% CI of difference = ["+f+", "+f+"] (%s)\n",
		c.EffectSize, hypothesis.CategorizeEffect(c.EffectSize), c.CI.Level*100, c.CI.Lower, c.CI.Upper, zero)
}

// PrintRecommendation prints the conclusion in a box
func (p *Printer) PrintRecommendation(rec Recommendation) {
	p.Header("Recommendation")

	var b strings.Builder
	b.WriteString(rec.Headline)
	for _, e := range rec.Evidence {
		b.WriteString("\n- " + e)
	}
	fmt.Fprintln(p.w, p.styles.box.Render(b.String()))
}

// PrintPlots lists the written chart files
func (p *Printer) PrintPlots(paths []string) {
	if len(paths) == 0 {
		return
	}
	p.Header("Plots")
	for _, path := range paths {
		fmt.Fprintf(p.w, "  %s\n", path)
	}
}

// printCheck writes the label, the statistic line and the decision
func (p *Printer) printCheck(label string, r experiment.TestResult, rejected, retained string) {
	fmt.Fprintln(p.w, p.styles.label.Render(label))
	fmt.Fprintln(p.w, StatLine(r))
	if r.Rejected() {
		fmt.Fprintf(p.w, "  -> %s\n", p.styles.reject.Render(fmt.Sprintf("%s (p < %.2f)", rejected, r.Alpha)))
	} else {
		fmt.Fprintf(p.w, "  -> %s\n", p.styles.accept.Render(fmt.Sprintf("%s (p >= %.2f)", retained, r.Alpha)))
	}
}

// StatLine formats a result the way every check is reported
func StatLine(r experiment.TestResult) string {
	return fmt.Sprintf("Test Stat = %.4f, p-value = %.4f", r.Statistic, r.PValue)
}

func groupLabel(g experiment.Group) string {
	return fmt.Sprintf("%s (%s)", g, g.Strategy())
}

func numberFormat(m experiment.Metric) string {
	if m == experiment.MetricConversionRate {
		return "%.4f"
	}
	return "%.2f"
}
