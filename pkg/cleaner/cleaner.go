// Package cleaner strips volatile execution state from notebook documents.
//
// Only code cells are touched, and only three fields of them: outputs,
// execution_count and selected metadata keys. Everything else in the
// document is written back exactly as it was decoded.
package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/jmylchreest/nbclean/internal/logger"
	"github.com/jmylchreest/nbclean/pkg/notebook"
)

// Status is the outcome of cleaning one path.
type Status string

const (
	// StatusCleaned means the document had volatile state and was rewritten
	// (or would have been, in a dry run).
	StatusCleaned Status = "cleaned"

	// StatusUnchanged means the document needed no changes. The file was not written.
	StatusUnchanged Status = "unchanged"

	// StatusSkipped means the file could not be read or parsed.
	StatusSkipped Status = "skipped"

	// StatusMissing means the path does not exist.
	StatusMissing Status = "missing"
)

// Result describes what happened to one path.
type Result struct {
	Path   string
	Status Status
	DryRun bool
	Stats  *Stats
	Err    error
}

// Changed reports whether the document was, or in a dry run would be, rewritten.
func (r *Result) Changed() bool {
	return r.Status == StatusCleaned
}

// Cleaner applies a rule chain to notebook documents.
type Cleaner struct {
	cfg   *Config
	rules *Chain
	fs    afero.Fs
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithFs reads and writes notebooks through fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Cleaner) {
		c.fs = fs
	}
}

// New creates a cleaner. A nil config uses DefaultConfig.
func New(cfg *Config, opts ...Option) *Cleaner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Cleaner{
		cfg:   cfg,
		rules: cfg.Rules(),
		fs:    afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name describes the configured rule chain.
func (c *Cleaner) Name() string {
	return c.rules.Name()
}

// CleanDocument applies the rule chain to every code cell of doc in memory.
func (c *Cleaner) CleanDocument(doc *notebook.Document) *Stats {
	stats := NewStats()
	for _, cell := range doc.Cells() {
		stats.Cells++
		if !cell.IsCode() {
			continue
		}
		stats.CodeCells++
		for _, rule := range c.rules.Apply(cell) {
			stats.RecordChange(rule)
		}
	}
	return stats
}

// CleanFile cleans the notebook at path and rewrites it if anything changed.
//
// Read and parse failures are not errors: they produce a StatusSkipped
// result carrying the cause. The returned error is non-nil only when a
// changed document could not be encoded or written.
func (c *Cleaner) CleanFile(path string) (*Result, error) {
	start := time.Now()
	res := &Result{Path: path, DryRun: c.cfg.DryRun}
	log := logger.With("path", path)

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		res.Status = StatusSkipped
		res.Err = err
		return res, nil
	}

	doc, err := notebook.Parse(data)
	if err != nil {
		res.Status = StatusSkipped
		res.Err = err
		return res, nil
	}

	stats := c.CleanDocument(doc)
	stats.InputBytes = len(data)
	res.Stats = stats

	log.Debug("notebook parsed",
		"nbformat", doc.Version(),
		"cells", stats.Cells,
		"code_cells", stats.CodeCells)

	if !stats.Changed() {
		res.Status = StatusUnchanged
		stats.Duration = time.Since(start)
		return res, nil
	}

	out, err := doc.Marshal(c.cfg.EncodeOptions())
	if err != nil {
		return res, fmt.Errorf("encoding %s: %w", path, err)
	}
	stats.OutputBytes = len(out)

	if !c.cfg.DryRun {
		if err := afero.WriteFile(c.fs, path, out, 0644); err != nil {
			return res, fmt.Errorf("writing %s: %w", path, err)
		}
	}

	res.Status = StatusCleaned
	stats.Duration = time.Since(start)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("notebook cleaned", "dry_run", c.cfg.DryRun, "stats", stats.String())
	}
	return res, nil
}
