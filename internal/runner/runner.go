// Package runner drives a cleaning pass over a set of notebook paths.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmylchreest/nbclean/internal/discover"
	"github.com/jmylchreest/nbclean/internal/logger"
	"github.com/jmylchreest/nbclean/internal/report"
	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

// Options configures a Runner.
type Options struct {
	// Root is searched when no explicit paths are given.
	Root string

	// Discover controls which files are collected from directories.
	Discover discover.Options

	// Reporters receive every result as it is produced.
	Reporters []report.Reporter
}

// Runner cleans notebooks one at a time.
type Runner struct {
	cleaner *cleaner.Cleaner
	opts    Options
}

// New creates a runner around c.
func New(c *cleaner.Cleaner, opts Options) *Runner {
	return &Runner{cleaner: c, opts: opts}
}

// Summary collects the results of a run in processing order.
type Summary struct {
	Results []*cleaner.Result
}

// Changed reports whether any notebook was modified (or would be, in a dry run).
func (s *Summary) Changed() bool {
	for _, res := range s.Results {
		if res.Changed() {
			return true
		}
	}
	return false
}

// Count returns how many results have the given status.
func (s *Summary) Count(status cleaner.Status) int {
	n := 0
	for _, res := range s.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Run cleans every target in order. With no args the root is searched;
// otherwise each arg is a file, or a directory to search. Missing paths are
// reported and skipped.
//
// Run stops early only when ctx is cancelled or a cleaned notebook cannot be
// written; the summary returned alongside the error holds the results so far.
func (r *Runner) Run(ctx context.Context, args []string) (*Summary, error) {
	summary := &Summary{}

	targets, err := r.targets(args)
	if err != nil {
		return summary, err
	}
	logger.DebugContext(ctx, "targets resolved", "count", len(targets), "explicit", len(args) > 0)

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			logger.Warn("run interrupted", "processed", i, "remaining", len(targets)-i)
			return summary, err
		}

		var res *cleaner.Result
		if target.missing {
			res = &cleaner.Result{Path: target.path, Status: cleaner.StatusMissing}
		} else {
			res, err = r.cleaner.CleanFile(target.path)
			if err != nil {
				return summary, err
			}
		}

		summary.Results = append(summary.Results, res)
		for _, rep := range r.opts.Reporters {
			rep.Report(res)
		}
	}

	return summary, nil
}

type target struct {
	path    string
	missing bool
}

func (r *Runner) targets(args []string) ([]target, error) {
	if len(args) == 0 {
		paths, err := discover.Find(r.opts.Root, r.opts.Discover)
		if err != nil {
			return nil, err
		}
		return toTargets(paths), nil
	}

	var targets []target
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			targets = append(targets, target{path: arg, missing: true})
		case err != nil:
			// Unreadable but present: let the cleaner report it as skipped.
			targets = append(targets, target{path: arg})
		case info.IsDir():
			paths, err := discover.Find(arg, r.opts.Discover)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			targets = append(targets, toTargets(paths)...)
		default:
			targets = append(targets, target{path: arg})
		}
	}
	return targets, nil
}

func toTargets(paths []string) []target {
	targets := make([]target, len(paths))
	for i, p := range paths {
		targets[i] = target{path: p}
	}
	return targets
}
