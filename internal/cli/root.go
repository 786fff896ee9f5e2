// Package cli implements the command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hightemp/indicators/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags
var (
	verbose   bool
	logFormat string
	envFile   string
)

// Resolved at startup by loadRuntime.
var (
	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Clean country indicator datasets",
	Long: `indicators cleans tabular country-indicator datasets.

Standardise free-text country labels to canonical ISO-3166 names:
  indicators resolve "Untied Kingdom" SPI Turkey
  cut -d, -f1 data.csv | indicators resolve --json
  indicators standardise --in data.csv --column Country --out clean.csv

Select, drop and inspect indicator columns:
  indicators category Economy --in clean.csv
  indicators drop Notes Source --in clean.csv
  indicators outliers --in clean.csv

Labels that cannot be resolved become "aaa.Unknown", which sorts first.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log resolution diagnostics")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with INDICATORS_* settings")

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(standardiseCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(outliersCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadRuntime reads INDICATORS_* settings, applies explicit flags on top and
// builds the logger shared by every command.
func loadRuntime(cmd *cobra.Command, args []string) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	loaded, err := config.Load(envFiles...)
	if err != nil {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
		return nil
	}
	if cmd.Flags().Changed("verbose") {
		loaded.Verbose = verbose
	}
	if cmd.Flags().Changed("log-format") {
		loaded.LogFormat = logFormat
	}
	if err := loaded.Validate(); err != nil {
		exitWithCode(ExitInvalidInput, fmt.Sprintf("Error: %v", err))
		return nil
	}

	cfg = loaded
	logger = newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	return nil
}

// newLogger logs warnings only, or everything down to debug when verbose.
func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ExitCode constants
const (
	ExitSuccess      = 0
	ExitInvalidInput = 2
	ExitNotFound     = 4
)

func exitWithCode(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
