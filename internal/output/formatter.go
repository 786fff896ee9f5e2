// Package output handles output formatting.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hightemp/indicators/internal/outliers"
	"github.com/hightemp/indicators/internal/resolve"
)

// ResolveResult contains the result of resolving one country label.
type ResolveResult struct {
	resolve.Result
	Error string `json:"error,omitempty"`
}

// FormatText formats result as tab-separated text.
func (r *ResolveResult) FormatText() string {
	if r.Error != "" {
		return FormatError(r.Input, errors.New(r.Error))
	}

	score := "-"
	if r.Tier == resolve.TierFuzzy || r.Tier == resolve.TierUnknown {
		score = strconv.Itoa(r.Score)
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s",
		r.Input,
		r.Name,
		r.Tier,
		score,
	)
}

// FormatJSON formats result as JSON.
func (r *ResolveResult) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// BatchResult contains results for batch processing.
type BatchResult struct {
	Results []*ResolveResult
}

// FormatText formats batch results as text (one line per result).
func (b *BatchResult) FormatText() string {
	var lines []string
	for _, r := range b.Results {
		lines = append(lines, r.FormatText())
	}
	return strings.Join(lines, "\n")
}

// FormatJSON formats batch results as JSON array.
func (b *BatchResult) FormatJSON() (string, error) {
	results := b.Results
	if results == nil {
		results = []*ResolveResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatError formats an error line for batch output.
func FormatError(input string, err error) string {
	return fmt.Sprintf("%s\t-\t-\t-\tERROR: %s", input, err.Error())
}

// OutlierTable is the per-indicator outlier summary.
type OutlierTable struct {
	Summaries []outliers.Summary
}

// FormatText formats the table with a header row.
func (o *OutlierTable) FormatText() string {
	lines := []string{"Indicator\tOutliers\tOutlier Percentage"}
	for _, s := range o.Summaries {
		lines = append(lines, fmt.Sprintf("%s\t%d\t%.2f", s.Indicator, s.Outliers, s.Percentage))
	}
	return strings.Join(lines, "\n")
}

// FormatJSON formats the table as a JSON array.
func (o *OutlierTable) FormatJSON() (string, error) {
	summaries := o.Summaries
	if summaries == nil {
		summaries = []outliers.Summary{}
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OutlierReport is the detail of a single column.
type OutlierReport struct {
	outliers.Report
}

// FormatText prints the fences followed by one row<TAB>value line per outlier.
func (o *OutlierReport) FormatText() string {
	lines := []string{fmt.Sprintf("%s\tq1=%g\tq3=%g\tlower=%g\tupper=%g\toutliers=%d",
		o.Column, o.Q1, o.Q3, o.Lower, o.Upper, len(o.Rows))}
	for i, row := range o.Rows {
		lines = append(lines, fmt.Sprintf("%d\t%g", row, o.Values[i]))
	}
	return strings.Join(lines, "\n")
}

// FormatJSON formats the report as JSON.
func (o *OutlierReport) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(o.Report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
