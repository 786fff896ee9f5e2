// Package categories maps indicator categories to dataset columns.
package categories

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/hightemp/indicators/internal/table"
	"gopkg.in/yaml.v3"
)

// ErrEmptyCategory is returned when a category name is blank.
var ErrEmptyCategory = errors.New("empty category name")

// Map holds category -> indicator column names, in file order.
type Map struct {
	columns map[string][]string
	order   []string
}

// Parse decodes a JSON or YAML object of category -> list of column names.
func Parse(data []byte) (*Map, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse category map: %w", err)
	}

	m := &Map{columns: make(map[string][]string)}
	if len(root.Content) == 0 {
		return m, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse category map: expected an object, got %s", kindName(doc.Kind))
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		var cols []string
		if err := value.Decode(&cols); err != nil {
			return nil, fmt.Errorf("category %q (line %d): %w", key.Value, key.Line, err)
		}
		if _, dup := m.columns[key.Value]; !dup {
			m.order = append(m.order, key.Value)
		}
		m.columns[key.Value] = cols
	}
	return m, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unsupported node"
	}
}

// Load reads a category map file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category map %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Columns returns the columns configured for category. An unknown category
// has no columns.
func (m *Map) Columns(category string) []string {
	cols := m.columns[category]
	result := make([]string, len(cols))
	copy(result, cols)
	return result
}

// Has reports whether category is defined.
func (m *Map) Has(category string) bool {
	_, ok := m.columns[category]
	return ok
}

// Names returns the category names in file order.
func (m *Map) Names() []string {
	result := make([]string, len(m.order))
	copy(result, m.order)
	return result
}

// Sorted returns the category names sorted alphabetically.
func (m *Map) Sorted() []string {
	names := m.Names()
	sort.Strings(names)
	return names
}

// maxSuggestDistance bounds the edits between a mistyped category and the
// suggestion offered for it.
const maxSuggestDistance = 2

// Suggest returns the defined category closest to name, compared
// case-insensitively, if it is within maxSuggestDistance edits.
// Ties keep file order.
func (m *Map) Suggest(name string) (string, bool) {
	query := strings.ToLower(name)
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range m.order {
		d := levenshtein.ComputeDistance(query, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// Filter returns the columns of f that belong to category, in map order.
// An unknown category gives a frame with no columns and the same row count.
// A configured column missing from f is an error.
func Filter(f *table.Frame, m *Map, category string) (*table.Frame, error) {
	if category == "" {
		return nil, ErrEmptyCategory
	}
	out, err := f.Select(m.Columns(category)...)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}
	return out, nil
}
