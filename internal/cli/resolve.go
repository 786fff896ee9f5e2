package cli

import (
	"fmt"
	"os"

	"github.com/hightemp/indicators/internal/batch"
	"github.com/hightemp/indicators/internal/config"
	"github.com/hightemp/indicators/internal/output"
	"github.com/hightemp/indicators/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	threshold   int
	jsonOutput  bool
	concurrency int
	memoPath    string
	useMemo     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [name...]",
	Short: "Resolve country labels to canonical names",
	Long: `Resolves each label through exact lookup, case-insensitive match,
special cases and fuzzy matching. Without arguments, labels are read
from stdin, one per line.

Output columns: input, canonical name, tier, fuzzy score.

Examples:
  indicators resolve Germny "Congo DR"
  indicators resolve --threshold 90 Brazill
  cat labels.txt | indicators resolve --concurrency 8 --memo`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().IntVar(&threshold, "threshold", config.DefaultFuzzyThreshold, "fuzzy score a match must exceed (0-100)")
	resolveCmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	resolveCmd.Flags().IntVar(&concurrency, "concurrency", config.DefaultConcurrency, "resolver workers for stdin input (max 32)")
	resolveCmd.Flags().BoolVar(&useMemo, "memo", false, "reuse results from the memo file")
	resolveCmd.Flags().StringVar(&memoPath, "memo-file", "", "memo file path (default ~/.indicators/cache/memo.json)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	resolver := newResolver(cmd)
	memo := openMemo()
	if memo != nil {
		defer saveMemo(memo)
	}

	workers := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		workers = config.ClampConcurrency(concurrency)
	}
	processor := batch.NewProcessor(resolver,
		batch.WithMemo(memo),
		batch.WithConcurrency(workers),
	)

	if len(args) > 0 {
		results := processor.ResolveAll(ctx, args)
		if jsonOutput {
			jsonStr, err := (&output.BatchResult{Results: results}).FormatJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
		} else {
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.FormatText())
			}
		}

		if len(args) == 1 && results[0].Name == resolve.Unknown {
			if memo != nil {
				saveMemo(memo)
			}
			exitWithCode(ExitNotFound, fmt.Sprintf("Country %q not found", args[0]))
		}
		return nil
	}

	// Check if stdin is a terminal
	if !isBatchMode() {
		// stdin is a terminal, show help
		return cmd.Help()
	}

	// Batch mode from stdin
	if workers > 1 {
		return processor.ProcessInputConcurrent(ctx, os.Stdin, cmd.OutOrStdout(), jsonOutput)
	}
	return processor.ProcessInput(ctx, os.Stdin, cmd.OutOrStdout(), jsonOutput)
}

// newResolver builds a resolver using --threshold when given, otherwise the
// configured threshold.
func newResolver(cmd *cobra.Command) *resolve.Resolver {
	th := cfg.FuzzyThreshold
	if cmd.Flags().Changed("threshold") {
		th = threshold
	}
	if th < config.MinFuzzyThreshold || th > config.MaxFuzzyThreshold {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Invalid threshold %d: must be between %d and %d",
			th, config.MinFuzzyThreshold, config.MaxFuzzyThreshold))
	}
	return resolve.New(
		resolve.WithThreshold(th),
		resolve.WithLogger(logger),
	)
}

// openMemo returns nil unless --memo or --memo-file was given.
func openMemo() *batch.Cache {
	if !useMemo && memoPath == "" {
		return nil
	}

	path := memoPath
	if path == "" {
		dir := config.DefaultCacheDir()
		if err := config.EnsureDir(dir); err != nil {
			logger.Warn("memo disabled", "dir", dir, "error", err)
			return nil
		}
		path = config.MemoPath(dir)
	}

	memo := batch.NewCache(path, cfg.MemoTTLDays)
	if err := memo.Load(); err != nil {
		logger.Warn("memo not loaded, starting empty", "path", path, "error", err)
	}
	if removed := memo.Cleanup(); removed > 0 {
		logger.Debug("expired memo entries removed", "count", removed)
	}
	return memo
}

func saveMemo(memo *batch.Cache) {
	if err := memo.Save(); err != nil {
		logger.Warn("memo not saved", "error", err)
	}
}

// isBatchMode checks if we're receiving batch input
func isBatchMode() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
