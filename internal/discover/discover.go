// Package discover finds notebook files below a directory.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtension is the notebook file extension.
const DefaultExtension = ".ipynb"

// Options controls discovery.
type Options struct {
	// Extension is the file suffix to collect, including the dot.
	Extension string

	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the root. A matching directory is not descended into.
	Exclude []string
}

// ValidatePatterns reports the first malformed exclude pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern: %q", p)
		}
	}
	return nil
}

// Find walks root recursively and returns every regular file whose name ends
// with the configured extension, sorted lexically. Symlinked directories are
// not followed.
func Find(root string, opts Options) ([]string, error) {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if err := ValidatePatterns(opts.Exclude); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && excluded(filepath.ToSlash(rel), opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
