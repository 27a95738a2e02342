package experiment

import (
	"fmt"
)

// Group labels which bidding strategy produced an observation
type Group string

const (
	// GroupControl is the maximum-bidding strategy
	GroupControl Group = "control"
	// GroupTest is the average-bidding strategy
	GroupTest Group = "test"
)

// Groups lists both groups in report order
var Groups = []Group{GroupControl, GroupTest}

func (g Group) String() string { return string(g) }

// Valid reports whether g is one of the two known groups
func (g Group) Valid() bool {
	return g == GroupControl || g == GroupTest
}

// Strategy returns the bidding strategy the group stands for
func (g Group) Strategy() string {
	switch g {
	case GroupControl:
		return "maximum bidding"
	case GroupTest:
		return "average bidding"
	default:
		return "unknown"
	}
}

// Metric names a numeric column of the dataset
type Metric string

const (
	MetricImpression     Metric = "impression"
	MetricClick          Metric = "click"
	MetricPurchase       Metric = "purchase"
	MetricEarning        Metric = "earning"
	MetricConversionRate Metric = "conversion_rate"
)

// AllMetrics lists every column in display order
var AllMetrics = []Metric{MetricImpression, MetricClick, MetricPurchase, MetricEarning, MetricConversionRate}

// AnalyzedMetrics are the metrics compared between groups
var AnalyzedMetrics = []Metric{MetricPurchase, MetricConversionRate, MetricEarning}

func (m Metric) String() string { return string(m) }

// Label returns the human-readable column name
func (m Metric) Label() string {
	switch m {
	case MetricImpression:
		return "Impression"
	case MetricClick:
		return "Click"
	case MetricPurchase:
		return "Purchase"
	case MetricEarning:
		return "Earning"
	case MetricConversionRate:
		return "Conversion Rate"
	default:
		return string(m)
	}
}

// Observation is one row of a group sheet
type Observation struct {
	Impressions    float64 `json:"impressions"`
	Clicks         float64 `json:"clicks"`
	Purchases      float64 `json:"purchases"`
	Earnings       float64 `json:"earnings"`
	Group          Group   `json:"group"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Value returns the observation's value for a metric
func (o Observation) Value(m Metric) float64 {
	switch m {
	case MetricImpression:
		return o.Impressions
	case MetricClick:
		return o.Clicks
	case MetricPurchase:
		return o.Purchases
	case MetricEarning:
		return o.Earnings
	case MetricConversionRate:
		return o.ConversionRate
	default:
		panic(fmt.Sprintf("experiment: unknown metric %q", m))
	}
}

// Dataset is the combined, labeled table. It is not modified after Combine.
type Dataset struct {
	Observations []Observation `json:"observations"`
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Observations)
}

// Count returns the number of rows belonging to a group
func (d *Dataset) Count(g Group) int {
	n := 0
	for _, o := range d.Observations {
		if o.Group == g {
			n++
		}
	}
	return n
}

// Values extracts one metric column for one group, in row order
func (d *Dataset) Values(g Group, m Metric) []float64 {
	values := make([]float64, 0, len(d.Observations))
	for _, o := range d.Observations {
		if o.Group == g {
			values = append(values, o.Value(m))
		}
	}
	return values
}

// Decision is the outcome of a null-hypothesis significance test
type Decision string

const (
	Reject       Decision = "reject"
	FailToReject Decision = "fail_to_reject"
)

func (d Decision) String() string { return string(d) }

// DefaultAlpha is the significance level used throughout
const DefaultAlpha = 0.05

// TestResult holds one statistical check
type TestResult struct {
	Name      string   `json:"name"`
	Statistic float64  `json:"statistic"`
	PValue    float64  `json:"p_value"`
	Alpha     float64  `json:"alpha"`
	Decision  Decision `json:"decision"`

	// Optional detail; zero when the test does not define it
	DegreesOfFreedom float64 `json:"degrees_of_freedom,omitempty"`
	N1               int     `json:"n1,omitempty"`
	N2               int     `json:"n2,omitempty"`
}

// NewTestResult builds a result and applies the decision rule
func NewTestResult(name string, statistic, pValue, alpha float64) TestResult {
	return TestResult{
		Name:      name,
		Statistic: statistic,
		PValue:    pValue,
		Alpha:     alpha,
		Decision:  Decide(pValue, alpha),
	}
}

// Rejected reports whether H0 was rejected
func (r TestResult) Rejected() bool {
	return r.Decision == Reject
}

// TestKind identifies the two-sample test to run
type TestKind string

const (
	StudentT     TestKind = "student_t"
	WelchT       TestKind = "welch_t"
	MannWhitneyU TestKind = "mann_whitney_u"
)

func (k TestKind) String() string { return string(k) }

// Title returns the display name of the test
func (k TestKind) Title() string {
	switch k {
	case StudentT:
		return "Independent two-sample t-test (equal variances)"
	case WelchT:
		return "Welch's t-test (unequal variances)"
	case MannWhitneyU:
		return "Mann-Whitney U test"
	default:
		return string(k)
	}
}
