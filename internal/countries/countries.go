// Package countries provides the ISO-3166 country registry used to
// standardise country names.
package countries

import (
	"bufio"
	_ "embed"
	"strings"
	"sync"

	aliases "github.com/biter777/countries"
	"golang.org/x/text/cases"
)

//go:embed iso3166.txt
var iso3166Data string

// Country is a single registry record.
type Country struct {
	Alpha2       string
	Alpha3       string
	Numeric      string
	Name         string
	OfficialName string
	CommonName   string
}

// Registry is an immutable set of canonical country names.
type Registry struct {
	countries []Country
	byAlpha2  map[string]int
	byKey     map[string]int
	names     []string
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

func loadData() {
	once.Do(func() {
		defaultRegistry = Parse(iso3166Data)
	})
}

// Default returns the embedded ISO-3166 registry.
func Default() *Registry {
	loadData()
	return defaultRegistry
}

// Parse builds a registry from pipe-separated lines of
// alpha2|alpha3|numeric|name|official name|common name.
// Blank lines, comments and malformed lines are skipped.
func Parse(content string) *Registry {
	r := &Registry{
		byAlpha2: make(map[string]int),
		byKey:    make(map[string]int),
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		for len(parts) < 6 {
			parts = append(parts, "")
		}
		c := Country{
			Alpha2:       strings.ToUpper(strings.TrimSpace(parts[0])),
			Alpha3:       strings.ToUpper(strings.TrimSpace(parts[1])),
			Numeric:      strings.TrimSpace(parts[2]),
			Name:         strings.TrimSpace(parts[3]),
			OfficialName: strings.TrimSpace(parts[4]),
			CommonName:   strings.TrimSpace(parts[5]),
		}
		if c.Alpha2 == "" || c.Name == "" {
			continue
		}
		if _, dup := r.byAlpha2[c.Alpha2]; dup {
			continue
		}

		idx := len(r.countries)
		r.countries = append(r.countries, c)
		r.names = append(r.names, c.Name)
		r.byAlpha2[c.Alpha2] = idx

		for _, k := range []string{c.Alpha2, c.Alpha3, c.Numeric, c.Name, c.OfficialName, c.CommonName} {
			if k == "" {
				continue
			}
			key := fold(k)
			// First record wins so a name never shadows an earlier code.
			if _, exists := r.byKey[key]; !exists {
				r.byKey[key] = idx
			}
		}
	}
	return r
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Lookup resolves a code or name to its canonical country name.
// Alpha-2, alpha-3 and numeric codes, names, official names and common names
// are matched case-insensitively.
func (r *Registry) Lookup(name string) (string, bool) {
	if idx, ok := r.byKey[fold(name)]; ok {
		return r.countries[idx].Name, true
	}
	return "", false
}

// Alias resolves spelling variants and localized names known to the
// biter777 catalogue, such as "UAE" or "Deutschland".
func (r *Registry) Alias(name string) (string, bool) {
	code := aliases.ByName(name)
	if code == aliases.Unknown || !code.IsValid() {
		return "", false
	}
	if idx, ok := r.byAlpha2[code.Alpha2()]; ok {
		return r.countries[idx].Name, true
	}
	return "", false
}

// Names returns all canonical names in registry order.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// All returns every record in registry order.
func (r *Registry) All() []Country {
	result := make([]Country, len(r.countries))
	copy(result, r.countries)
	return result
}

// Country returns the record for an alpha-2 code.
func (r *Registry) Country(alpha2 string) (Country, bool) {
	idx, ok := r.byAlpha2[strings.ToUpper(alpha2)]
	if !ok {
		return Country{}, false
	}
	return r.countries[idx], true
}

// Count returns the number of countries.
func (r *Registry) Count() int {
	return len(r.countries)
}

// GetName returns the country name for the given ISO-3166 alpha-2 code.
// Returns empty string if not found.
func GetName(code string) string {
	c, ok := Default().Country(code)
	if !ok {
		return ""
	}
	return c.Name
}

// IsValid checks if the given code is a valid ISO-3166 alpha-2 code.
func IsValid(code string) bool {
	_, ok := Default().Country(code)
	return ok
}

// AllNames returns all canonical country names in registry order.
func AllNames() []string {
	return Default().Names()
}

// Count returns the number of countries in the embedded registry.
func Count() int {
	return Default().Count()
}
