// Package output writes machine-readable run reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

// Format represents report formats.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported report formats.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported report format: %s", name)
}

// Record is the report entry for one path.
type Record struct {
	Path        string         `json:"path" yaml:"path"`
	Status      cleaner.Status `json:"status" yaml:"status"`
	DryRun      bool           `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Cells       int            `json:"cells,omitempty" yaml:"cells,omitempty"`
	CodeCells   int            `json:"code_cells,omitempty" yaml:"code_cells,omitempty"`
	Changes     map[string]int `json:"changes,omitempty" yaml:"changes,omitempty"`
	InputBytes  int            `json:"input_bytes,omitempty" yaml:"input_bytes,omitempty"`
	OutputBytes int            `json:"output_bytes,omitempty" yaml:"output_bytes,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromResult converts a cleaner result into a report record.
func FromResult(res *cleaner.Result) Record {
	rec := Record{
		Path:   res.Path,
		Status: res.Status,
		DryRun: res.DryRun && res.Changed(),
	}
	if res.Stats != nil {
		rec.Cells = res.Stats.Cells
		rec.CodeCells = res.Stats.CodeCells
		rec.InputBytes = res.Stats.InputBytes
		rec.OutputBytes = res.Stats.OutputBytes
		if len(res.Stats.Changes) > 0 {
			rec.Changes = res.Stats.Changes
		}
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}

// Writer handles report serialization.
type Writer interface {
	// Write outputs a single record.
	Write(rec Record) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w, "  "), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}
