// Package resolve standardises free-text country labels to canonical
// registry names.
package resolve

import (
	"errors"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/hightemp/indicators/internal/config"
	"github.com/hightemp/indicators/internal/countries"
	"github.com/hightemp/indicators/internal/fuzzy"
	"golang.org/x/text/cases"
)

// Unknown is returned when no strategy resolves the input.
const Unknown = "aaa.Unknown"

// Registry supplies canonical country names.
type Registry interface {
	Lookup(name string) (string, bool)
	Names() []string
}

// AliasRegistry is implemented by registries that also know spelling
// variants of their names. It is consulted after the special cases.
type AliasRegistry interface {
	Alias(name string) (string, bool)
}

// Matcher finds the closest candidate for a query.
type Matcher interface {
	ExtractOne(query string, choices []string) (fuzzy.Match, bool)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(query string, choices []string) (fuzzy.Match, bool)

// ExtractOne calls f.
func (f MatcherFunc) ExtractOne(query string, choices []string) (fuzzy.Match, bool) {
	return f(query, choices)
}

// Tier identifies the strategy that produced a result.
type Tier string

const (
	TierExact       Tier = "exact"
	TierCaseFold    Tier = "casefold"
	TierSpecialCase Tier = "special"
	TierAlias       Tier = "alias"
	TierFuzzy       Tier = "fuzzy"
	TierUnknown     Tier = "unknown"
	TierSentinel    Tier = "sentinel"
)

// Result describes how an input was resolved.
type Result struct {
	Input string `json:"input"`
	Name  string `json:"name"`
	Tier  Tier   `json:"tier"`
	Score int    `json:"score,omitempty"`
}

var errInvalidUTF8 = errors.New("input is not valid UTF-8")

// Resolver runs the fallback chain: exact registry lookup, case-insensitive
// name match, special cases, registry aliases, then thresholded fuzzy match.
// A Resolver is safe for concurrent use.
type Resolver struct {
	registry  Registry
	matcher   Matcher
	logger    *slog.Logger
	threshold int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry replaces the embedded ISO-3166 registry.
func WithRegistry(r Registry) Option {
	return func(res *Resolver) {
		if r != nil {
			res.registry = r
		}
	}
}

// WithMatcher replaces the default WRatio matcher.
func WithMatcher(m Matcher) Option {
	return func(res *Resolver) {
		if m != nil {
			res.matcher = m
		}
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(l *slog.Logger) Option {
	return func(res *Resolver) {
		if l != nil {
			res.logger = l
		}
	}
}

// WithThreshold sets the fuzzy score a candidate must strictly exceed.
func WithThreshold(threshold int) Option {
	return func(res *Resolver) {
		res.threshold = threshold
	}
}

// New creates a resolver. Without options it uses the embedded registry,
// the WRatio matcher, threshold 80 and a logger that discards output.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		registry:  countries.Default(),
		matcher:   MatcherFunc(fuzzy.ExtractOne),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		threshold: config.DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the configured fuzzy threshold.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Resolve returns the canonical name for input, or Unknown.
func (r *Resolver) Resolve(input string) string {
	return r.DetailThreshold(input, r.threshold).Name
}

// ResolveThreshold is Resolve with an explicit fuzzy threshold.
func (r *Resolver) ResolveThreshold(input string, threshold int) string {
	return r.DetailThreshold(input, threshold).Name
}

// Detail resolves input and reports which tier matched.
func (r *Resolver) Detail(input string) Result {
	return r.DetailThreshold(input, r.threshold)
}

// DetailThreshold is Detail with an explicit fuzzy threshold.
func (r *Resolver) DetailThreshold(input string, threshold int) Result {
	if input == Unknown {
		return Result{Input: input, Name: Unknown, Tier: TierSentinel}
	}

	strategies := []struct {
		tier Tier
		fn   func(string) (string, bool)
	}{
		{TierExact, r.exact},
		{TierCaseFold, r.caseFold},
		{TierSpecialCase, r.special},
		{TierAlias, r.alias},
	}
	for _, s := range strategies {
		if name, ok := s.fn(input); ok {
			return Result{Input: input, Name: name, Tier: s.tier}
		}
	}

	return r.fuzzyMatch(input, threshold)
}

// Standardise resolves every element of column, preserving order and length.
func (r *Resolver) Standardise(column []string) []string {
	out := make([]string, len(column))
	for i, v := range column {
		out[i] = r.Resolve(v)
	}
	return out
}

func (r *Resolver) exact(input string) (string, bool) {
	return r.registry.Lookup(input)
}

func (r *Resolver) caseFold(input string) (string, bool) {
	if !utf8.ValidString(input) {
		r.logger.Warn("case-insensitive match skipped", "input", input, "error", errInvalidUTF8)
		return "", false
	}
	folded := cases.Fold().String(input)
	for _, name := range r.registry.Names() {
		if cases.Fold().String(name) == folded {
			return name, true
		}
	}
	return "", false
}

func (r *Resolver) special(input string) (string, bool) {
	name, ok := matchSpecialCase(input)
	if ok {
		r.logger.Info("using special case", "input", input, "country", name)
	}
	return name, ok
}

func (r *Resolver) alias(input string) (string, bool) {
	ar, ok := r.registry.(AliasRegistry)
	if !ok {
		return "", false
	}
	name, ok := ar.Alias(input)
	if ok {
		r.logger.Info("using alias", "input", input, "country", name)
	}
	return name, ok
}

func (r *Resolver) fuzzyMatch(input string, threshold int) Result {
	m, ok := r.matcher.ExtractOne(input, r.registry.Names())
	if !ok {
		r.logger.Warn("country not found", "input", input, "reason", "empty registry")
		return Result{Input: input, Name: Unknown, Tier: TierUnknown}
	}
	if m.Score > threshold {
		r.logger.Info("using fuzzy match", "input", input, "country", m.Choice, "score", m.Score)
		return Result{Input: input, Name: m.Choice, Tier: TierFuzzy, Score: m.Score}
	}
	r.logger.Warn("country not found",
		"input", input,
		"best_match", m.Choice,
		"score", m.Score,
		"threshold", threshold,
	)
	return Result{Input: input, Name: Unknown, Tier: TierUnknown, Score: m.Score}
}
