package categories

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hightemp/indicators/internal/table"
)

const sampleMap = `{
  "Economy": ["GDP", "Inflation"],
  "Health": ["Life expectancy"],
  "Empty": []
}`

func mustFrame(t *testing.T) *table.Frame {
	t.Helper()
	f, err := table.ReadCSV(strings.NewReader(
		"Country,GDP,Inflation,Life expectancy\nSpain,1400,3.1,83\nChad,12,4.0,53\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return f
}

func TestParseJSON(t *testing.T) {
	m, err := Parse([]byte(sampleMap))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(m.Names(), []string{"Economy", "Health", "Empty"}) {
		t.Errorf("Names() = %v, expected file order", m.Names())
	}
	if !reflect.DeepEqual(m.Columns("Economy"), []string{"GDP", "Inflation"}) {
		t.Errorf("Columns(Economy) = %v", m.Columns("Economy"))
	}
	if len(m.Columns("Missing")) != 0 || m.Has("Missing") {
		t.Error("unknown category should have no columns")
	}
	if !m.Has("Empty") {
		t.Error("Has(Empty) = false, expected true")
	}
}

func TestParseYAML(t *testing.T) {
	m, err := Parse([]byte("Economy:\n  - GDP\nHealth: [Life expectancy]\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(m.Sorted(), []string{"Economy", "Health"}) {
		t.Errorf("Sorted() = %v", m.Sorted())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`["GDP"]`,
		`{"Economy": "GDP"}`,
		`{"Economy": [`,
	}
	for _, in := range tests {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}

	m, err := Parse(nil)
	if err != nil || len(m.Names()) != 0 {
		t.Errorf("Parse(nil) = %v, %v, expected empty map", m, err)
	}
}

func TestColumnsReturnsCopy(t *testing.T) {
	m, _ := Parse([]byte(sampleMap))
	cols := m.Columns("Economy")
	cols[0] = "changed"
	if m.Columns("Economy")[0] != "GDP" {
		t.Error("Columns should return a copy")
	}
}

func TestSuggest(t *testing.T) {
	m, _ := Parse([]byte(sampleMap))

	tests := []struct {
		input    string
		expected string
		found    bool
	}{
		{"Econmy", "Economy", true},
		{"health", "Health", true},
		{"Helth", "Health", true},
		{"Transport", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := m.Suggest(tc.input)
		if got != tc.expected || ok != tc.found {
			t.Errorf("Suggest(%q) = (%q, %v), expected (%q, %v)", tc.input, got, ok, tc.expected, tc.found)
		}
	}
}

func TestLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "indicators-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "map.json")
	if err := os.WriteFile(path, []byte(sampleMap), 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Names()) != 3 {
		t.Errorf("Names() = %v, expected 3 categories", m.Names())
	}

	if _, err := Load(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestFilter(t *testing.T) {
	f := mustFrame(t)
	m, _ := Parse([]byte(sampleMap))

	tests := []struct {
		category string
		columns  []string
	}{
		{"Economy", []string{"GDP", "Inflation"}},
		{"Health", []string{"Life expectancy"}},
		{"Empty", []string{}},
		{"Unknown", []string{}},
	}
	for _, tc := range tests {
		out, err := Filter(f, m, tc.category)
		if err != nil {
			t.Errorf("Filter(%q) failed: %v", tc.category, err)
			continue
		}
		if !reflect.DeepEqual(out.Columns(), tc.columns) {
			t.Errorf("Filter(%q).Columns() = %v, expected %v", tc.category, out.Columns(), tc.columns)
		}
		if out.Len() != f.Len() {
			t.Errorf("Filter(%q).Len() = %d, expected %d", tc.category, out.Len(), f.Len())
		}
	}
}

func TestFilterErrors(t *testing.T) {
	f := mustFrame(t)
	m, _ := Parse([]byte(`{"Trade": ["Exports"]}`))

	if _, err := Filter(f, m, "Trade"); !errors.Is(err, table.ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound, got %v", err)
	}
	if _, err := Filter(f, m, ""); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}
}
