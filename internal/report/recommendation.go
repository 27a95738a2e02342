package report

import (
	"fmt"
	"math"

	"abtest/domain/experiment"
	"abtest/internal/hypothesis"
)

// Recommendation is the written conclusion of a run
type Recommendation struct {
	// Winner is empty when earnings do not differ significantly
	Winner   experiment.Group `json:"winner,omitempty"`
	Switch   bool             `json:"switch"`
	Headline string           `json:"headline"`
	Evidence []string         `json:"evidence"`
}

// Recommend derives the conclusion from the comparisons.
// Earnings decide; purchase and conversion rate are supporting evidence.
func Recommend(comparisons []*hypothesis.Comparison) Recommendation {
	var rec Recommendation

	earning := find(comparisons, experiment.MetricEarning)
	switch {
	case earning == nil:
		rec.Headline = "No earnings comparison available; no recommendation can be made."
	case earning.Significant():
		winner, _ := earning.Winner()
		rec.Winner = winner
		rec.Switch = winner == experiment.GroupTest
		if rec.Switch {
			rec.Headline = fmt.Sprintf("Switch to %s: earnings are significantly higher (%s, p = %.4f).",
				winner.Strategy(), formatLift(earning.Lift()), earning.Result.PValue)
		} else {
			rec.Headline = fmt.Sprintf("Keep %s: earnings are significantly lower under %s (%s, p = %.4f).",
				winner.Strategy(), experiment.GroupTest.Strategy(), formatLift(earning.Lift()), earning.Result.PValue)
		}
	default:
		rec.Headline = fmt.Sprintf("No evidence to switch: earnings do not differ significantly between %s and %s (p = %.4f).",
			experiment.GroupControl.Strategy(), experiment.GroupTest.Strategy(), earning.Result.PValue)
	}

	for _, c := range comparisons {
		rec.Evidence = append(rec.Evidence, evidenceLine(c))
	}
	return rec
}

func evidenceLine(c *hypothesis.Comparison) string {
	if !c.Significant() {
		return fmt.Sprintf("%s: no significant difference (%s, p = %.4f).",
			c.Metric.Label(), c.Kind.Title(), c.Result.PValue)
	}
	winner, _ := c.Winner()
	return fmt.Sprintf("%s: significantly higher under %s (%s, %s, p = %.4f, d = %.2f %s).",
		c.Metric.Label(), winner.Strategy(), formatLift(c.Lift()), c.Kind.Title(),
		c.Result.PValue, c.EffectSize, hypothesis.CategorizeEffect(c.EffectSize))
}

func find(comparisons []*hypothesis.Comparison, m experiment.Metric) *hypothesis.Comparison {
	for _, c := range comparisons {
		if c.Metric == m {
			return c
		}
	}
	return nil
}

// formatLift renders the test-over-control change
func formatLift(lift float64) string {
	if math.IsNaN(lift) || math.IsInf(lift, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%% vs control", lift*100)
}
