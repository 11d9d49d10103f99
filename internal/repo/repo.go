// Package repo locates the repository a working directory belongs to.
package repo

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/jmylchreest/nbclean/internal/logger"
)

// Root returns the top-level worktree directory of the git repository that
// contains start, searching parent directories. When start is not inside a
// repository (or the repository is bare) the absolute form of start is returned.
func Root(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	r, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			logger.Debug("not inside a git repository, using directory as root", "dir", abs)
			return abs, nil
		}
		return "", fmt.Errorf("opening repository at %s: %w", abs, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return abs, nil
		}
		return "", fmt.Errorf("reading worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	logger.Debug("repository root found", "root", root)
	return root, nil
}
