package cleaner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures what the cleaner did to one document.
type Stats struct {
	// Cell counts
	Cells     int `json:"cells" yaml:"cells"`
	CodeCells int `json:"code_cells" yaml:"code_cells"`

	// Changes maps rule name to the number of cells it modified.
	Changes map[string]int `json:"changes" yaml:"changes"`

	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	Duration time.Duration `json:"duration_ns" yaml:"duration"`
}

// NewStats creates a Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{Changes: make(map[string]int)}
}

// RecordChange records that a rule modified a cell.
func (s *Stats) RecordChange(rule string) {
	s.Changes[rule]++
}

// TotalChanges returns the sum of all recorded changes.
func (s *Stats) TotalChanges() int {
	total := 0
	for _, n := range s.Changes {
		total += n
	}
	return total
}

// Changed reports whether any rule modified the document.
func (s *Stats) Changed() bool {
	return s.TotalChanges() > 0
}

// BytesRemoved returns how much smaller the rewritten document is.
// It is zero when the document was not re-encoded.
func (s *Stats) BytesRemoved() int {
	if s.OutputBytes == 0 {
		return 0
	}
	return s.InputBytes - s.OutputBytes
}

// String returns a short human-readable summary.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%d cells (%d code)", s.Cells, s.CodeCells))

	if len(s.Changes) > 0 {
		names := make([]string, 0, len(s.Changes))
		for name := range s.Changes {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%d", name, s.Changes[name])
		}
		sb.WriteString(", " + strings.Join(parts, " "))
	}

	if s.OutputBytes > 0 {
		sb.WriteString(fmt.Sprintf(", %s -> %s",
			humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes))))
	}

	return sb.String()
}
