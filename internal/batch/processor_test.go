package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hightemp/indicators/internal/resolve"
	"github.com/hightemp/indicators/internal/table"
)

const input = "Spain\n\n  SPI  \nGermny\nZzxyqq123\n"

func TestProcessInputText(t *testing.T) {
	p := NewProcessor(resolve.New())

	var out bytes.Buffer
	if err := p.ProcessInput(context.Background(), strings.NewReader(input), &out, false); err != nil {
		t.Fatalf("ProcessInput failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	expected := []string{
		"Spain\tSpain\texact\t-",
		"SPI\tSpain\tspecial\t-",
		"Germny\tGermany\tfuzzy\t92",
	}
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %q", len(lines), out.String())
	}
	for i, e := range expected {
		if lines[i] != e {
			t.Errorf("line %d = %q, expected %q", i, lines[i], e)
		}
	}
	if !strings.HasPrefix(lines[3], "Zzxyqq123\t"+resolve.Unknown+"\tunknown\t") {
		t.Errorf("line 3 = %q, expected unknown", lines[3])
	}
}

func TestProcessInputJSON(t *testing.T) {
	p := NewProcessor(resolve.New())

	var out bytes.Buffer
	if err := p.ProcessInput(context.Background(), strings.NewReader(input), &out, true); err != nil {
		t.Fatalf("ProcessInput failed: %v", err)
	}

	var parsed []map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("Invalid JSON array: %v", err)
	}
	if len(parsed) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(parsed))
	}
	if parsed[1]["input"] != "SPI" || parsed[1]["name"] != "Spain" {
		t.Errorf("result 1 = %v", parsed[1])
	}
}

func TestProcessInputConcurrentPreservesOrder(t *testing.T) {
	var labels []string
	for i := 0; i < 50; i++ {
		labels = append(labels, "Spain", "Germny", "Canary Islands", "france")
	}

	sequential := NewProcessor(resolve.New())
	concurrent := NewProcessor(resolve.New(), WithConcurrency(8))

	var seqOut, conOut bytes.Buffer
	in := strings.Join(labels, "\n")
	if err := sequential.ProcessInput(context.Background(), strings.NewReader(in), &seqOut, false); err != nil {
		t.Fatalf("ProcessInput failed: %v", err)
	}
	if err := concurrent.ProcessInputConcurrent(context.Background(), strings.NewReader(in), &conOut, false); err != nil {
		t.Fatalf("ProcessInputConcurrent failed: %v", err)
	}

	if seqOut.String() != conOut.String() {
		t.Error("concurrent output should match sequential output line for line")
	}
}

func TestProcessInputConcurrentJSON(t *testing.T) {
	p := NewProcessor(resolve.New(), WithConcurrency(2))

	var out bytes.Buffer
	if err := p.ProcessInputConcurrent(context.Background(), strings.NewReader(""), &out, true); err != nil {
		t.Fatalf("ProcessInputConcurrent failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("empty input JSON = %q, expected []", out.String())
	}
}

func TestResolveAllCanceled(t *testing.T) {
	p := NewProcessor(resolve.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ResolveAll(ctx, []string{"Spain"})
	if len(results) != 1 || results[0].Error == "" {
		t.Errorf("ResolveAll with canceled context = %+v, expected an error result", results[0])
	}
}

func TestProcessorUsesMemo(t *testing.T) {
	memo := NewCache("", 7)
	memo.Set(80, resolve.Result{Input: "Atlantis", Name: "Spain", Tier: resolve.TierExact})

	p := NewProcessor(resolve.New(), WithMemo(memo))
	results := p.ResolveAll(context.Background(), []string{"Atlantis", "Chad"})

	if results[0].Name != "Spain" {
		t.Errorf("memo hit = %q, expected Spain", results[0].Name)
	}
	if _, ok := memo.Get(80, "Chad"); !ok {
		t.Error("miss should be recorded in the memo")
	}
}

func TestStandardiseColumn(t *testing.T) {
	f, err := table.ReadCSV(strings.NewReader(
		"Country,GDP\nspain,1\nSPI,2\nZzxyqq123,3\nspain,4\nCongo DR,5\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	p := NewProcessor(resolve.New(), WithConcurrency(3))
	unknown, err := p.StandardiseColumn(context.Background(), f, "Country")
	if err != nil {
		t.Fatalf("StandardiseColumn failed: %v", err)
	}
	if unknown != 1 {
		t.Errorf("unknown = %d, expected 1", unknown)
	}

	got, _ := f.Column("Country")
	expected := []string{"Spain", "Spain", resolve.Unknown, "Spain", "Congo, Democratic Republic of the"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Country = %v, expected %v", got, expected)
	}

	gdp, _ := f.Column("GDP")
	if !reflect.DeepEqual(gdp, []string{"1", "2", "3", "4", "5"}) {
		t.Errorf("other columns should be untouched, GDP = %v", gdp)
	}

	if _, err := p.StandardiseColumn(context.Background(), f, "Missing"); err == nil {
		t.Error("StandardiseColumn on a missing column should fail")
	}
}

func TestStandardiseColumnSequential(t *testing.T) {
	f, err := table.ReadCSV(strings.NewReader("Country\nTurkey\ngermny\nTurkey\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	p := NewProcessor(resolve.New(), WithConcurrency(1))
	unknown, err := p.StandardiseColumn(context.Background(), f, "Country")
	if err != nil || unknown != 0 {
		t.Fatalf("StandardiseColumn = %d, %v", unknown, err)
	}
	got, _ := f.Column("Country")
	if !reflect.DeepEqual(got, []string{"Türkiye", "Germany", "Türkiye"}) {
		t.Errorf("Country = %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.StandardiseColumn(ctx, f, "Country"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
