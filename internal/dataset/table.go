package dataset

import (
	"fmt"
	"math"
	"strconv"

	"abtest/adapters/excel"
	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/errors"
)

// Column headers every group sheet must carry
var RequiredColumns = []struct {
	Metric experiment.Metric
	Header string
}{
	{experiment.MetricImpression, "Impression"},
	{experiment.MetricClick, "Click"},
	{experiment.MetricPurchase, "Purchase"},
	{experiment.MetricEarning, "Earning"},
}

// Row is one untagged record of a group sheet
type Row struct {
	Line        int // 1-based spreadsheet row, header is line 1
	Impressions float64
	Clicks      float64
	Purchases   float64
	Earnings    float64
}

// Table is a parsed group sheet before tagging
type Table struct {
	Name string
	Rows []Row
}

// ParseTable validates the schema of a sheet and converts its cells to numbers
func ParseTable(data *excel.ExcelData) (*Table, error) {
	columns := make(map[experiment.Metric]string, len(RequiredColumns))
	for _, required := range RequiredColumns {
		header, ok := data.FindColumn(required.Header)
		if !ok {
			return nil, errors.InvalidInput(
				fmt.Sprintf("sheet %q: column %q not found", data.Sheet, required.Header), core.ErrMissingColumn)
		}
		columns[required.Metric] = header
	}

	if len(data.Rows) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("sheet %q", data.Sheet), core.ErrNoRows)
	}

	table := &Table{Name: data.Sheet, Rows: make([]Row, 0, len(data.Rows))}
	for i, raw := range data.Rows {
		line := data.Line(i)
		values := make(map[experiment.Metric]float64, len(columns))
		for metric, header := range columns {
			v, err := parseCell(raw[header])
			if err != nil {
				return nil, errors.InvalidInput("invalid cell", core.NewCellError(data.Sheet, line, header, err))
			}
			values[metric] = v
		}
		table.Rows = append(table.Rows, Row{
			Line:        line,
			Impressions: values[experiment.MetricImpression],
			Clicks:      values[experiment.MetricClick],
			Purchases:   values[experiment.MetricPurchase],
			Earnings:    values[experiment.MetricEarning],
		})
	}

	return table, nil
}

func parseCell(cell string) (float64, error) {
	if cell == "" {
		return 0, core.ErrEmptyCell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.ErrNotNumeric
	}
	return v, nil
}
