package dataset

import (
	"fmt"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/errors"
)

// Combine tags each table's rows with its group, concatenates control then
// test, and derives the conversion rate. A row without positive impressions
// is a computation error.
func Combine(control, test *Table) (*experiment.Dataset, error) {
	ds := &experiment.Dataset{
		Observations: make([]experiment.Observation, 0, len(control.Rows)+len(test.Rows)),
	}

	for _, part := range []struct {
		table *Table
		group experiment.Group
	}{
		{control, experiment.GroupControl},
		{test, experiment.GroupTest},
	} {
		for _, row := range part.table.Rows {
			if !(row.Impressions > 0) {
				return nil, errors.ComputationError(
					fmt.Sprintf("conversion rate for sheet %q row %d (impressions=%v)", part.table.Name, row.Line, row.Impressions),
					core.ErrZeroImpressions)
			}
			ds.Observations = append(ds.Observations, experiment.Observation{
				Impressions:    row.Impressions,
				Clicks:         row.Clicks,
				Purchases:      row.Purchases,
				Earnings:       row.Earnings,
				Group:          part.group,
				ConversionRate: row.Purchases / row.Impressions,
			})
		}
	}

	return ds, nil
}
