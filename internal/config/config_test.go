package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FuzzyThreshold != 80 {
		t.Errorf("FuzzyThreshold = %d, expected 80", cfg.FuzzyThreshold)
	}
	if cfg.CategoryMap != DefaultCategoryMapPath {
		t.Errorf("CategoryMap = %q, expected %q", cfg.CategoryMap, DefaultCategoryMapPath)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, expected %d", cfg.Concurrency, DefaultConcurrency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("INDICATORS_FUZZY_THRESHOLD", "90")
	t.Setenv("INDICATORS_CATEGORY_MAP", "maps/categories.json")
	t.Setenv("INDICATORS_CONCURRENCY", "1000")
	t.Setenv("INDICATORS_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FuzzyThreshold != 90 {
		t.Errorf("FuzzyThreshold = %d, expected 90", cfg.FuzzyThreshold)
	}
	if cfg.CategoryMap != "maps/categories.json" {
		t.Errorf("CategoryMap = %q, expected maps/categories.json", cfg.CategoryMap)
	}
	if cfg.Concurrency != MaxConcurrency {
		t.Errorf("Concurrency = %d, expected clamp to %d", cfg.Concurrency, MaxConcurrency)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, expected json", cfg.LogFormat)
	}
}

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("INDICATORS_MEMO_TTL_DAYS=7\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("INDICATORS_MEMO_TTL_DAYS") })

	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MemoTTLDays != 7 {
		t.Errorf("MemoTTLDays = %d, expected 7", cfg.MemoTTLDays)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Load with a missing explicit env file should fail")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"INDICATORS_FUZZY_THRESHOLD", "101"},
		{"INDICATORS_FUZZY_THRESHOLD", "-1"},
		{"INDICATORS_LOG_FORMAT", "xml"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadUnparsable(t *testing.T) {
	t.Setenv("INDICATORS_FUZZY_THRESHOLD", "eighty")
	if _, err := Load(); err == nil {
		t.Error("Load should fail on a non-numeric threshold")
	}
}

func TestClampConcurrency(t *testing.T) {
	tests := []struct {
		input, expected int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{8, 8},
		{MaxConcurrency + 1, MaxConcurrency},
	}
	for _, tc := range tests {
		if got := ClampConcurrency(tc.input); got != tc.expected {
			t.Errorf("ClampConcurrency(%d) = %d, expected %d", tc.input, got, tc.expected)
		}
	}
}

func TestMemoPath(t *testing.T) {
	got := MemoPath("/tmp/cache")
	expected := filepath.Join("/tmp/cache", "memo.json")
	if got != expected {
		t.Errorf("MemoPath = %q, expected %q", got, expected)
	}
}
