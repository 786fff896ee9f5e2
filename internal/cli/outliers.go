package cli

import (
	"errors"
	"fmt"

	"github.com/hightemp/indicators/internal/outliers"
	"github.com/hightemp/indicators/internal/output"
	"github.com/hightemp/indicators/internal/table"
	"github.com/spf13/cobra"
)

var outliersCmd = &cobra.Command{
	Use:   "outliers",
	Short: "Report IQR outliers per indicator",
	Long: `Flags values below Q1 - 1.5*IQR or above Q3 + 1.5*IQR. Without --column,
prints the outlier count and percentage of every numeric column, most
outliers first. With --column, prints the fences and the outlying rows.

Examples:
  indicators outliers --in clean.csv
  indicators outliers --in clean.csv --column GDP --json`,
	Args: cobra.NoArgs,
	RunE: runOutliers,
}

func init() {
	outliersCmd.Flags().StringVar(&inPath, "in", "", "input CSV file (- for stdin)")
	outliersCmd.Flags().StringVar(&columnName, "column", "", "report a single column")
	outliersCmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	_ = outliersCmd.MarkFlagRequired("in")
}

type formatter interface {
	FormatText() string
	FormatJSON() (string, error)
}

func runOutliers(cmd *cobra.Command, args []string) error {
	frame := readFrame()

	var result formatter
	if columnName != "" {
		report, err := outliers.Find(frame, columnName)
		if errors.Is(err, table.ErrColumnNotFound) || errors.Is(err, outliers.ErrNotNumeric) {
			exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
			return nil
		}
		if err != nil {
			return err
		}
		result = &output.OutlierReport{Report: report}
	} else {
		summaries, err := outliers.PerIndicator(frame)
		if err != nil {
			return err
		}
		result = &output.OutlierTable{Summaries: summaries}
	}

	if jsonOutput {
		jsonStr, err := result.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.FormatText())
	return nil
}
