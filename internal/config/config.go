// Package config provides configuration defaults and environment loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application name.
	AppName = "indicators"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "INDICATORS_"

	// CacheDirName is the cache directory name.
	CacheDirName = ".indicators"

	// MemoFileName is the resolution memo file name.
	MemoFileName = "memo.json"

	// DefaultCategoryMapPath is the default category to indicator map.
	DefaultCategoryMapPath = "data/processing/category_indicator_map.json"

	// DefaultFuzzyThreshold is the score a fuzzy match must strictly exceed.
	DefaultFuzzyThreshold = 80

	// MinFuzzyThreshold and MaxFuzzyThreshold bound the accepted threshold.
	MinFuzzyThreshold = 0
	MaxFuzzyThreshold = 100

	// DefaultConcurrency is the default number of resolver workers.
	DefaultConcurrency = 4

	// MaxConcurrency is the maximum allowed number of resolver workers.
	MaxConcurrency = 32

	// DefaultMemoTTLDays is the default TTL for memo entries.
	DefaultMemoTTLDays = 30

	// DefaultCountryColumn is the dataset column holding country labels.
	DefaultCountryColumn = "Country"

	// OutlierIQRFactor scales the interquartile range for outlier fences.
	OutlierIQRFactor = 1.5
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds runtime configuration.
type Config struct {
	FuzzyThreshold int    `env:"FUZZY_THRESHOLD" envDefault:"80"`
	CategoryMap    string `env:"CATEGORY_MAP" envDefault:"data/processing/category_indicator_map.json"`
	CountryColumn  string `env:"COUNTRY_COLUMN" envDefault:"Country"`
	Concurrency    int    `env:"CONCURRENCY" envDefault:"4"`
	MemoTTLDays    int    `env:"MEMO_TTL_DAYS" envDefault:"30"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
	Verbose        bool   `env:"VERBOSE"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FuzzyThreshold: DefaultFuzzyThreshold,
		CategoryMap:    DefaultCategoryMapPath,
		CountryColumn:  DefaultCountryColumn,
		Concurrency:    DefaultConcurrency,
		MemoTTLDays:    DefaultMemoTTLDays,
		LogFormat:      "text",
	}
}

// Load reads INDICATORS_* environment variables on top of the defaults.
// Dotenv files are loaded first when given; a missing default .env is ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.FuzzyThreshold < MinFuzzyThreshold || c.FuzzyThreshold > MaxFuzzyThreshold {
		return fmt.Errorf("%w: fuzzy threshold %d outside [%d,%d]",
			ErrInvalidConfig, c.FuzzyThreshold, MinFuzzyThreshold, MaxFuzzyThreshold)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q (use text or json)", ErrInvalidConfig, c.LogFormat)
	}
	c.Concurrency = ClampConcurrency(c.Concurrency)
	if c.MemoTTLDays < 0 {
		c.MemoTTLDays = 0
	}
	return nil
}

// ClampConcurrency limits n to [1, MaxConcurrency].
func ClampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory
		home = "."
	}
	return filepath.Join(home, CacheDirName, "cache")
}

// MemoPath returns the memo file path inside cacheDir.
func MemoPath(cacheDir string) string {
	return filepath.Join(cacheDir, MemoFileName)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
