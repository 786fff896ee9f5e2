// Package batch standardises country labels read from stdin or a table column.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hightemp/indicators/internal/config"
	"github.com/hightemp/indicators/internal/output"
	"github.com/hightemp/indicators/internal/resolve"
	"github.com/hightemp/indicators/internal/table"
)

// Processor handles batch resolution.
type Processor struct {
	resolver    *resolve.Resolver
	memo        *Cache
	concurrency int
}

// Option configures a Processor.
type Option func(*Processor)

// WithMemo reuses and records results in c.
func WithMemo(c *Cache) Option {
	return func(p *Processor) {
		p.memo = c
	}
}

// WithConcurrency sets the number of workers, clamped to [1, MaxConcurrency].
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		p.concurrency = config.ClampConcurrency(n)
	}
}

// NewProcessor creates a new batch processor.
func NewProcessor(resolver *resolve.Resolver, opts ...Option) *Processor {
	if resolver == nil {
		resolver = resolve.New()
	}
	p := &Processor{
		resolver:    resolver,
		concurrency: config.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessInput reads one label per line from r and writes results to w.
func (p *Processor) ProcessInput(ctx context.Context, r io.Reader, w io.Writer, jsonOutput bool) error {
	scanner := bufio.NewScanner(r)
	var results []*output.ResolveResult

	if jsonOutput {
		// Collect all results for JSON array output
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			results = append(results, p.resolveOne(ctx, line))
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		return writeJSON(w, results)
	}

	// Stream output line by line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result := p.resolveOne(ctx, line)
		fmt.Fprintln(w, result.FormatText())
	}

	return scanner.Err()
}

// ProcessInputConcurrent reads all labels first, resolves them with a
// bounded worker pool and writes results in input order.
func (p *Processor) ProcessInputConcurrent(ctx context.Context, r io.Reader, w io.Writer, jsonOutput bool) error {
	scanner := bufio.NewScanner(r)
	var lines []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	results := p.ResolveAll(ctx, lines)

	if jsonOutput {
		return writeJSON(w, results)
	}
	for _, result := range results {
		fmt.Fprintln(w, result.FormatText())
	}
	return nil
}

// ResolveAll resolves inputs concurrently. Results keep input order.
func (p *Processor) ResolveAll(ctx context.Context, inputs []string) []*output.ResolveResult {
	results := make([]*output.ResolveResult, len(inputs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.concurrency)

	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, label string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = p.resolveOne(ctx, label)
		}(i, input)
	}

	wg.Wait()
	return results
}

// StandardiseColumn replaces every cell of column with its canonical name.
// Each distinct label is resolved once. It returns the number of cells that
// resolved to the Unknown Sentinel.
func (p *Processor) StandardiseColumn(ctx context.Context, f *table.Frame, column string) (int, error) {
	cells, err := f.Column(column)
	if err != nil {
		return 0, err
	}

	var distinct []string
	seen := make(map[string]bool)
	for _, c := range cells {
		if !seen[c] {
			seen[c] = true
			distinct = append(distinct, c)
		}
	}

	resolved := make(map[string]string, len(distinct))
	if p.concurrency == 1 && p.memo == nil {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("standardise %q: %w", column, err)
		}
		for i, name := range p.resolver.Standardise(distinct) {
			resolved[distinct[i]] = name
		}
	} else {
		for _, res := range p.ResolveAll(ctx, distinct) {
			if res.Error != "" {
				return 0, fmt.Errorf("standardise %q: %s", res.Input, res.Error)
			}
			resolved[res.Input] = res.Name
		}
	}

	unknown := 0
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = resolved[c]
		if out[i] == resolve.Unknown {
			unknown++
		}
	}
	return unknown, f.SetColumn(column, out)
}

func (p *Processor) resolveOne(ctx context.Context, input string) *output.ResolveResult {
	result := &output.ResolveResult{Result: resolve.Result{Input: input}}

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	threshold := p.resolver.Threshold()
	if p.memo != nil {
		if res, ok := p.memo.Get(threshold, input); ok {
			result.Result = res
			return result
		}
	}

	result.Result = p.resolver.DetailThreshold(input, threshold)
	if p.memo != nil {
		p.memo.Set(threshold, result.Result)
	}
	return result
}

func writeJSON(w io.Writer, results []*output.ResolveResult) error {
	batch := &output.BatchResult{Results: results}
	jsonStr, err := batch.FormatJSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, jsonStr)
	return nil
}
