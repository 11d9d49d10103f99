package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter buffers records and writes them as one JSON array.
type JSONWriter struct {
	w       *bufio.Writer
	indent  string
	records []Record
	flushed bool
}

// NewJSONWriter creates a JSON writer. An empty indent writes compact JSON.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{
		w:       bufio.NewWriter(w),
		indent:  indent,
		records: make([]Record, 0),
	}
}

// Write buffers a single record.
func (w *JSONWriter) Write(rec Record) error {
	w.records = append(w.records, rec)
	return nil
}

// Flush writes the buffered records as a JSON array. Later calls are no-ops.
func (w *JSONWriter) Flush() error {
	if w.flushed {
		return nil
	}

	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(w.records); err != nil {
		return err
	}

	w.flushed = true
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL), one record per line.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(rec Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
