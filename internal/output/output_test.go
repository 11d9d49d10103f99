package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

func sampleRecords() []Record {
	return []Record{
		{
			Path:        "a.ipynb",
			Status:      cleaner.StatusCleaned,
			Cells:       2,
			CodeCells:   1,
			Changes:     map[string]int{cleaner.RuleClearOutputs: 1},
			InputBytes:  100,
			OutputBytes: 60,
		},
		{Path: "b.ipynb", Status: cleaner.StatusSkipped, Error: "invalid character"},
	}
}

// --- Format Tests ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" JSONL ", FormatJSONL, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- NewWriter Factory Tests ---

func TestNewWriter_Types(t *testing.T) {
	tests := []struct {
		format Format
		check  func(Writer) bool
	}{
		{FormatJSON, func(w Writer) bool { _, ok := w.(*JSONWriter); return ok }},
		{FormatJSONL, func(w Writer) bool { _, ok := w.(*JSONLWriter); return ok }},
		{FormatYAML, func(w Writer) bool { _, ok := w.(*YAMLWriter); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if !tt.check(w) {
				t.Errorf("unexpected writer type %T", w)
			}
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("unsupported"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

// --- FromResult Tests ---

func TestFromResult(t *testing.T) {
	stats := cleaner.NewStats()
	stats.Cells = 3
	stats.RecordChange(cleaner.RuleResetExecutionCount)

	rec := FromResult(&cleaner.Result{Path: "x.ipynb", Status: cleaner.StatusCleaned, DryRun: true, Stats: stats})
	if rec.Path != "x.ipynb" || rec.Status != cleaner.StatusCleaned || !rec.DryRun || rec.Cells != 3 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Changes[cleaner.RuleResetExecutionCount] != 1 {
		t.Errorf("expected changes to be copied, got %v", rec.Changes)
	}

	rec = FromResult(&cleaner.Result{Path: "y.ipynb", Status: cleaner.StatusSkipped, DryRun: true, Err: errors.New("boom")})
	if rec.DryRun {
		t.Error("dry_run should only be set on changed records")
	}
	if rec.Error != "boom" {
		t.Errorf("Error = %q, want %q", rec.Error, "boom")
	}
	if rec.Changes != nil {
		t.Errorf("expected no changes, got %v", rec.Changes)
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_OutputsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "  ")

	for _, rec := range sampleRecords() {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got []Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || got[1].Error != "invalid character" {
		t.Errorf("unexpected records %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}

func TestJSONWriter_EmptyIsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty report = %q, want []", got)
	}
}

func TestJSONWriter_FlushOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "")
	_ = w.Write(sampleRecords()[0])

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if n := strings.Count(buf.String(), "a.ipynb"); n != 1 {
		t.Errorf("expected record written once, found %d times", n)
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	for _, rec := range sampleRecords() {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Sequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	for _, rec := range sampleRecords() {
		_ = w.Write(rec)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got []Record
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Changes[cleaner.RuleClearOutputs] != 1 {
		t.Errorf("changes not round-tripped: %+v", got[0])
	}
	if !strings.HasPrefix(buf.String(), "- path: a.ipynb") {
		t.Errorf("unexpected YAML layout:\n%s", buf.String())
	}
}
