package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter buffers records and writes them as one YAML sequence.
type YAMLWriter struct {
	w       *bufio.Writer
	records []Record
	flushed bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:       bufio.NewWriter(w),
		records: make([]Record, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(rec Record) error {
	w.records = append(w.records, rec)
	return nil
}

// Flush writes the buffered records as YAML. Later calls are no-ops.
func (w *YAMLWriter) Flush() error {
	if w.flushed {
		return nil
	}

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(w.records); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.flushed = true
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
