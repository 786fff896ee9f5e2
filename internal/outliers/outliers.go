// Package outliers flags values outside the interquartile fences of a column.
package outliers

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hightemp/indicators/internal/config"
	"github.com/hightemp/indicators/internal/table"
	"github.com/montanaflynn/stats"
)

// ErrNotNumeric is returned by Find for a column with non-numeric cells.
var ErrNotNumeric = errors.New("column is not numeric")

// Report describes the outliers of one column.
type Report struct {
	Column string    `json:"column"`
	Count  int       `json:"count"`
	Mean   float64   `json:"mean"`
	Std    float64   `json:"std"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Q1     float64   `json:"q1"`
	Q3     float64   `json:"q3"`
	IQR    float64   `json:"iqr"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
	Rows   []int     `json:"rows"`
	Values []float64 `json:"values"`
}

// Summary is one row of the per-indicator table.
type Summary struct {
	Indicator  string  `json:"indicator"`
	Outliers   int     `json:"outliers"`
	Percentage float64 `json:"percentage"`
}

// Find computes the fences of column and returns the rows strictly outside
// them. Missing cells are ignored. A column without values has no outliers.
func Find(f *table.Frame, column string) (Report, error) {
	values, numeric, err := f.Float64s(column)
	if err != nil {
		return Report{}, err
	}
	if !numeric {
		return Report{}, fmt.Errorf("%w: %q", ErrNotNumeric, column)
	}
	return find(column, values)
}

func find(column string, values []float64) (Report, error) {
	report := Report{Column: column, Rows: []int{}, Values: []float64{}}

	present := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return report, nil
	}

	desc, err := stats.DescribePercentileFunc(present, false, &[]float64{25, 75}, linearPercentile)
	if err != nil {
		return report, fmt.Errorf("describe %q: %w", column, err)
	}
	report.Count = int(desc.Count)
	report.Mean = desc.Mean
	report.Std = desc.Std
	report.Min = desc.Min
	report.Max = desc.Max
	report.Q1 = desc.DescriptionPercentiles[0].Value
	report.Q3 = desc.DescriptionPercentiles[1].Value
	report.IQR = report.Q3 - report.Q1
	report.Lower = report.Q1 - config.OutlierIQRFactor*report.IQR
	report.Upper = report.Q3 + config.OutlierIQRFactor*report.IQR

	for row, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < report.Lower || v > report.Upper {
			report.Rows = append(report.Rows, row)
			report.Values = append(report.Values, v)
		}
	}
	return report, nil
}

// PerIndicator counts outliers for every numeric column of f. Percentages
// are relative to the total row count and rounded to two places. The result
// is sorted by count, descending, keeping column order among equal counts.
func PerIndicator(f *table.Frame) ([]Summary, error) {
	summaries := []Summary{}
	for _, column := range f.Columns() {
		values, numeric, err := f.Float64s(column)
		if err != nil {
			return nil, err
		}
		if !numeric {
			continue
		}
		report, err := find(column, values)
		if err != nil {
			return nil, err
		}

		pct := 0.0
		if f.Len() > 0 {
			pct, err = stats.Round(float64(len(report.Rows))/float64(f.Len())*100, 2)
			if err != nil {
				return nil, fmt.Errorf("round %q: %w", column, err)
			}
		}
		summaries = append(summaries, Summary{
			Indicator:  column,
			Outliers:   len(report.Rows),
			Percentage: pct,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Outliers > summaries[j].Outliers
	})
	return summaries, nil
}

// linearPercentile interpolates between closest ranks, h = (n-1)*p/100.
func linearPercentile(input stats.Float64Data, percent float64) (float64, error) {
	if input.Len() == 0 {
		return math.NaN(), stats.ErrEmptyInput
	}
	if percent < 0 || percent > 100 {
		return math.NaN(), stats.ErrBounds
	}

	sorted := make([]float64, input.Len())
	copy(sorted, input)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * percent / 100
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo]), nil
}
