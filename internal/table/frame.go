// Package table holds a small in-memory tabular dataset read from CSV.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a named column does not exist.
var ErrColumnNotFound = errors.New("column not found")

// Frame is an ordered set of named string columns of equal length.
type Frame struct {
	columns []string
	index   map[string]int
	cells   [][]string // cells[col][row]
	rows    int
}

// New creates an empty frame with the given columns and row count.
// Duplicate column names keep their first position.
func New(columns []string, rows int) *Frame {
	f := &Frame{index: make(map[string]int), rows: rows}
	for _, c := range columns {
		if _, dup := f.index[c]; dup {
			continue
		}
		f.index[c] = len(f.columns)
		f.columns = append(f.columns, c)
		f.cells = append(f.cells, make([]string, rows))
	}
	return f
}

// ReadCSV reads a frame from r. The first record is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return New(nil, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, record)
	}

	f := New(header, len(records))

	// Header position -> column; repeated names keep the first occurrence.
	owner := make([]int, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if seen[name] {
			owner[i] = -1
			continue
		}
		seen[name] = true
		owner[i] = f.index[name]
	}

	for row, record := range records {
		for i, col := range owner {
			if col < 0 || i >= len(record) {
				continue
			}
			f.cells[col][row] = record[i]
		}
	}
	return f, nil
}

// ReadFile reads a CSV file.
func ReadFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return f, nil
}

// WriteCSV writes the header and all rows to w.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.columns); err != nil {
		return err
	}
	record := make([]string, len(f.columns))
	for row := 0; row < f.rows; row++ {
		for col := range f.columns {
			record[col] = f.cells[col][row]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the frame as CSV to path.
func (f *Frame) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := f.WriteCSV(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	result := make([]string, len(f.columns))
	copy(result, f.columns)
	return result
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Has reports whether the frame has the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]string, error) {
	col, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	result := make([]string, f.rows)
	copy(result, f.cells[col])
	return result, nil
}

// SetColumn replaces the named column, appending it when absent.
// values must have one entry per row.
func (f *Frame) SetColumn(name string, values []string) error {
	if len(values) != f.rows {
		return fmt.Errorf("column %q: got %d values for %d rows", name, len(values), f.rows)
	}
	cells := make([]string, f.rows)
	copy(cells, values)
	if col, ok := f.index[name]; ok {
		f.cells[col] = cells
		return nil
	}
	f.index[name] = len(f.columns)
	f.columns = append(f.columns, name)
	f.cells = append(f.cells, cells)
	return nil
}

// Float64s parses the named column as numbers. Blank cells, missing markers
// (NA, NaN, n/a, null, ..) and cells that cannot be parsed become NaN;
// numeric is false if any cell that is neither blank nor a missing marker
// failed to parse.
func (f *Frame) Float64s(name string) (values []float64, numeric bool, err error) {
	col, ok := f.index[name]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	values = make([]float64, f.rows)
	numeric = true
	for row, cell := range f.cells[col] {
		v, ok := parseFloat(cell)
		if !ok {
			values[row] = math.NaN()
			if !isMissing(cell) {
				numeric = false
			}
			continue
		}
		values[row] = v
	}
	return values, numeric, nil
}

var missingMarkers = map[string]bool{
	"na": true, "nan": true, "n/a": true, "null": true, "..": true,
}

func isMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || missingMarkers[strings.ToLower(s)]
}

func parseFloat(cell string) (float64, bool) {
	if isMissing(cell) {
		return math.NaN(), false
	}
	s := strings.TrimSpace(cell)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// Select returns a new frame with the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := New(nil, f.rows)
	for _, name := range names {
		col, ok := f.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		if out.Has(name) {
			continue
		}
		if err := out.SetColumn(name, f.cells[col]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Drop returns a new frame without the named columns. Unknown names are
// ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := New(nil, f.rows)
	for col, name := range f.columns {
		if drop[name] {
			continue
		}
		_ = out.SetColumn(name, f.cells[col])
	}
	return out
}

// Rows returns a new frame with only the given row indices, in order.
func (f *Frame) Rows(indices []int) (*Frame, error) {
	out := New(f.columns, len(indices))
	for i, row := range indices {
		if row < 0 || row >= f.rows {
			return nil, fmt.Errorf("row %d out of range [0,%d)", row, f.rows)
		}
		for col := range f.columns {
			out.cells[col][i] = f.cells[col][row]
		}
	}
	return out, nil
}
