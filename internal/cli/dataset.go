package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/hightemp/indicators/internal/batch"
	"github.com/hightemp/indicators/internal/categories"
	"github.com/hightemp/indicators/internal/config"
	"github.com/hightemp/indicators/internal/table"
	"github.com/spf13/cobra"
)

var (
	inPath     string
	outPath    string
	columnName string
	mapPath    string
)

var standardiseCmd = &cobra.Command{
	Use:   "standardise",
	Short: "Rewrite a dataset's country column with canonical names",
	Long: `Reads a CSV dataset, resolves every label of the country column and
writes the dataset back with canonical names. Each distinct label is
resolved once.

Examples:
  indicators standardise --in raw.csv --out clean.csv
  indicators standardise --in raw.csv --column Nation --threshold 90`,
	Args: cobra.NoArgs,
	RunE: runStandardise,
}

var categoryCmd = &cobra.Command{
	Use:   "category NAME",
	Short: "Keep only the indicator columns of a category",
	Long: `Keeps the columns that the category map assigns to NAME. An unknown
category yields a dataset with no columns.

Examples:
  indicators category Economy --in clean.csv
  indicators category Health --in clean.csv --map categories.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCategory,
}

var dropCmd = &cobra.Command{
	Use:   "drop COLUMN...",
	Short: "Remove columns from a dataset",
	Long: `Removes the named columns. Names that are not in the dataset are
ignored.

Example:
  indicators drop Notes Source --in clean.csv --out slim.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDrop,
}

func init() {
	for _, cmd := range []*cobra.Command{standardiseCmd, categoryCmd, dropCmd} {
		cmd.Flags().StringVar(&inPath, "in", "", "input CSV file (- for stdin)")
		cmd.Flags().StringVar(&outPath, "out", "", "output CSV file (default stdout)")
		_ = cmd.MarkFlagRequired("in")
	}

	standardiseCmd.Flags().StringVar(&columnName, "column", "", "country column (default \"Country\")")
	standardiseCmd.Flags().IntVar(&threshold, "threshold", config.DefaultFuzzyThreshold, "fuzzy score a match must exceed (0-100)")
	standardiseCmd.Flags().IntVar(&concurrency, "concurrency", config.DefaultConcurrency, "resolver workers (max 32)")
	standardiseCmd.Flags().BoolVar(&useMemo, "memo", false, "reuse results from the memo file")
	standardiseCmd.Flags().StringVar(&memoPath, "memo-file", "", "memo file path (default ~/.indicators/cache/memo.json)")

	categoryCmd.Flags().StringVar(&mapPath, "map", "", "category map, JSON or YAML (default data/processing/category_indicator_map.json)")
}

func runStandardise(cmd *cobra.Command, args []string) error {
	frame := readFrame()

	column := cfg.CountryColumn
	if columnName != "" {
		column = columnName
	}

	memo := openMemo()
	if memo != nil {
		defer saveMemo(memo)
	}

	workers := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		workers = config.ClampConcurrency(concurrency)
	}
	processor := batch.NewProcessor(newResolver(cmd),
		batch.WithMemo(memo),
		batch.WithConcurrency(workers),
	)

	unknown, err := processor.StandardiseColumn(cmd.Context(), frame, column)
	if errors.Is(err, table.ErrColumnNotFound) {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
		return nil
	}
	if err != nil {
		return err
	}
	if unknown > 0 {
		logger.Warn("labels left unresolved", "column", column, "rows", unknown)
	}

	return writeFrame(cmd, frame)
}

func runCategory(cmd *cobra.Command, args []string) error {
	frame := readFrame()

	path := cfg.CategoryMap
	if mapPath != "" {
		path = mapPath
	}
	m, err := categories.Load(path)
	if err != nil {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
		return nil
	}

	category := args[0]
	if !m.Has(category) {
		if suggestion, ok := m.Suggest(category); ok {
			logger.Warn("unknown category", "category", category, "did_you_mean", suggestion)
		} else {
			logger.Warn("unknown category", "category", category, "known", m.Sorted())
		}
	}

	filtered, err := categories.Filter(frame, m, category)
	if err != nil {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
		return nil
	}
	return writeFrame(cmd, filtered)
}

func runDrop(cmd *cobra.Command, args []string) error {
	frame := readFrame()
	for _, name := range args {
		if !frame.Has(name) {
			logger.Debug("column not present, nothing to drop", "column", name)
		}
	}
	return writeFrame(cmd, frame.Drop(args...))
}

// readFrame reads --in, exiting with ExitInvalidInput when it cannot.
func readFrame() *table.Frame {
	var (
		frame *table.Frame
		err   error
	)
	if inPath == "-" {
		frame, err = table.ReadCSV(os.Stdin)
	} else {
		frame, err = table.ReadFile(inPath)
	}
	if err != nil {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
		return nil
	}
	logger.Debug("dataset loaded", "path", inPath, "rows", frame.Len(), "columns", len(frame.Columns()))
	return frame
}

// writeFrame writes to --out, or stdout when it is empty.
func writeFrame(cmd *cobra.Command, frame *table.Frame) error {
	if outPath == "" {
		return frame.WriteCSV(cmd.OutOrStdout())
	}
	if err := frame.WriteFile(outPath); err != nil {
		return err
	}
	logger.Info("dataset written", "path", outPath, "rows", frame.Len())
	return nil
}
