package experiment

// Decide applies the strict threshold rule: reject only when p < alpha.
func Decide(pValue, alpha float64) Decision {
	if pValue < alpha {
		return Reject
	}
	return FailToReject
}

// SelectTest picks the two-sample test from the assumption outcomes.
// Non-normality in either group wins over the variance check.
func SelectTest(normalControl, normalTest, homogeneousVariance bool) TestKind {
	switch {
	case !normalControl || !normalTest:
		return MannWhitneyU
	case homogeneousVariance:
		return StudentT
	default:
		return WelchT
	}
}
