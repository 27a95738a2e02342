package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/domain/run"
	"abtest/internal/hypothesis"
	"abtest/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report is everything one run produced
type Report struct {
	RunID        core.RunID               `json:"run_id"`
	Fingerprint  run.Hash                 `json:"fingerprint"`
	GeneratedAt  time.Time                `json:"generated_at"`
	Input        string                   `json:"input"`
	ControlSheet string                   `json:"control_sheet"`
	TestSheet    string                   `json:"test_sheet"`
	Alpha        float64                  `json:"alpha"`
	LeveneCenter string                   `json:"levene_center"`
	Rows         int                      `json:"rows"`
	Summaries    []profiling.GroupSummary `json:"summaries"`
	Comparisons  []*hypothesis.Comparison `json:"comparisons"`
	Recommend    Recommendation           `json:"recommendation"`
	Plots        []string                 `json:"plots,omitempty"`
}

// Markdown renders the report as a Markdown document
func (r *Report) Markdown() []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Bidding strategy A/B test\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Run | `%s` |\n", r.RunID)
	fmt.Fprintf(&b, "| Generated | %s |\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	if r.Fingerprint != "" {
		fmt.Fprintf(&b, "| Fingerprint | `%s` |\n", r.Fingerprint)
	}
	fmt.Fprintf(&b, "| Input | `%s` |\n", r.Input)
	fmt.Fprintf(&b, "| Control | %s (%s) |\n", r.ControlSheet, experiment.GroupControl.Strategy())
	fmt.Fprintf(&b, "| Test | %s (%s) |\n", r.TestSheet, experiment.GroupTest.Strategy())
	fmt.Fprintf(&b, "| Rows | %d |\n", r.Rows)
	fmt.Fprintf(&b, "| Alpha | %.4g |\n", r.Alpha)
	fmt.Fprintf(&b, "| Levene centre | %s |\n\n", r.LeveneCenter)

	fmt.Fprintf(&b, "## Recommendation\n\n**%s**\n\n", r.Recommend.Headline)
	for _, e := range r.Recommend.Evidence {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("\n")

	if len(r.Summaries) > 0 {
		b.WriteString("## Descriptive statistics\n\n")
		b.WriteString("| metric | group | count | mean | std | min | 25% | 50% | 75% | max | skew | kurtosis | outliers |\n")
		b.WriteString("|---|---|--:|--:|--:|--:|--:|--:|--:|--:|--:|--:|--:|\n")
		for _, m := range experiment.AllMetrics {
			for _, gs := range r.Summaries {
				c, ok := gs.Column(m)
				if !ok {
					continue
				}
				f := numberFormat(m)
				fmt.Fprintf(&b, "| %s | %s | %d | "+f+" | "+f+" | "+f+" | "+f+" | "+f+" | "+f+" | "+f+" | %.3f | %.3f | %d |\n",
					m, gs.Group, c.Count, c.Mean, c.StdDev, c.Min, c.Q25, c.Median, c.Q75, c.Max, c.Skewness, c.Kurtosis, c.Outliers)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Comparisons) > 0 {
		b.WriteString("## Assumption checks\n\n")
		b.WriteString("| metric | check | statistic | p-value | decision |\n|---|---|--:|--:|---|\n")
		for _, c := range r.Comparisons {
			a := c.Assumptions
			writeResultRow(&b, c.Metric, "Shapiro-Wilk ("+string(experiment.GroupControl)+")", a.NormalityControl)
			writeResultRow(&b, c.Metric, "Shapiro-Wilk ("+string(experiment.GroupTest)+")", a.NormalityTest)
			writeResultRow(&b, c.Metric, "Levene ("+strings.TrimPrefix(a.Variance.Name, "levene_")+")", a.Variance)
		}
		b.WriteString("\n")

		b.WriteString("## Hypothesis tests\n\n")
		b.WriteString("| metric | test | statistic | p-value | decision | mean control | mean test | lift | Cohen's d | CI of difference |\n")
		b.WriteString("|---|---|--:|--:|---|--:|--:|--:|--:|---|\n")
		for _, c := range r.Comparisons {
			f := numberFormat(c.Metric)
			fmt.Fprintf(&b, "| %s | %s | %.4f | %.4f | %s | "+f+" | "+f+" | %s | %.3f | ["+f+", "+f+"] |\n",
				c.Metric, c.Kind.Title(), c.Result.Statistic, c.Result.PValue, c.Result.Decision,
				c.MeanControl, c.MeanTest, formatLift(c.Lift()), c.EffectSize, c.CI.Lower, c.CI.Upper)
		}
		b.WriteString("\n")
	}

	if len(r.Plots) > 0 {
		b.WriteString("## Plots\n\n")
		for _, p := range r.Plots {
			fmt.Fprintf(&b, "![%s](%s)\n\n", filepath.Base(p), p)
		}
	}

	return b.Bytes()
}

func writeResultRow(b *bytes.Buffer, m experiment.Metric, check string, r experiment.TestResult) {
	fmt.Fprintf(b, "| %s | %s | %.4f | %.4f | %s |\n", m, check, r.Statistic, r.PValue, r.Decision)
}

// HTML renders the Markdown report as a standalone page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(r.Markdown())

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Title: "A/B test " + r.RunID.String(),
	})
	return markdown.Render(doc, renderer)
}

// WriteFile writes the report as HTML when path ends in .html, otherwise as Markdown.
// Plot paths are rewritten relative to the report's directory.
func (r *Report) WriteFile(path string) error {
	rel := *r
	rel.Plots = make([]string, len(r.Plots))
	for i, p := range r.Plots {
		rel.Plots[i] = relativeTo(filepath.Dir(path), p)
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		data = rel.HTML()
	default:
		data = rel.Markdown()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func relativeTo(base, target string) string {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return target
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
