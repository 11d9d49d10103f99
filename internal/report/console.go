// Package report prints per-notebook outcomes for people reading a terminal.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

// Reporter receives each result as soon as the file has been processed.
type Reporter interface {
	Report(res *cleaner.Result)
}

// Console writes one tagged status line per result.
type Console struct {
	w     io.Writer
	quiet bool

	cleaned *color.Color
	clean   *color.Color
	skip    *color.Color
	warn    *color.Color
}

// NewConsole creates a console reporter. Quiet suppresses the lines for
// notebooks that needed no changes, and the final summary.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{
		w:       w,
		quiet:   quiet,
		cleaned: color.New(color.FgYellow),
		clean:   color.New(color.FgGreen),
		skip:    color.New(color.FgRed),
		warn:    color.New(color.FgMagenta),
	}
}

// Report prints the line for one result.
func (c *Console) Report(res *cleaner.Result) {
	switch res.Status {
	case cleaner.StatusCleaned:
		if res.DryRun {
			fmt.Fprintf(c.w, "%s %s (would clean)\n", c.cleaned.Sprint("[dirty]"), res.Path)
			return
		}
		fmt.Fprintf(c.w, "%s %s\n", c.cleaned.Sprint("[cleaned]"), res.Path)
	case cleaner.StatusUnchanged:
		if c.quiet {
			return
		}
		fmt.Fprintf(c.w, "%s %s (no changes)\n", c.clean.Sprint("[clean]"), res.Path)
	case cleaner.StatusSkipped:
		fmt.Fprintf(c.w, "%s %s: failed to read/parse (%v)\n", c.skip.Sprint("[skip]"), res.Path, res.Err)
	case cleaner.StatusMissing:
		fmt.Fprintf(c.w, "%s path not found: %s\n", c.warn.Sprint("[warn]"), res.Path)
	}
}

// Summary prints the totals line for a run.
func (c *Console) Summary(results []*cleaner.Result) {
	if c.quiet || len(results) == 0 {
		return
	}

	var cleaned, skipped, missing, removed int
	dryRun := false
	for _, res := range results {
		switch res.Status {
		case cleaner.StatusCleaned:
			cleaned++
			dryRun = dryRun || res.DryRun
			removed += res.Stats.BytesRemoved()
		case cleaner.StatusSkipped:
			skipped++
		case cleaner.StatusMissing:
			missing++
		}
	}

	verb := "cleaned"
	if dryRun {
		verb = "would clean"
	}
	line := fmt.Sprintf("%s %d of %d notebooks", verb, cleaned, len(results)-missing)
	if removed > 0 {
		line += fmt.Sprintf(", %s removed", humanize.Bytes(uint64(removed)))
	}
	if skipped > 0 {
		line += fmt.Sprintf(", %d skipped", skipped)
	}
	if missing > 0 {
		line += fmt.Sprintf(", %d not found", missing)
	}
	fmt.Fprintln(c.w, line)
}
