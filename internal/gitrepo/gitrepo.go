package gitrepo

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

var (
	// ErrNotARepository indicates the path does not resolve to a git working tree.
	ErrNotARepository = errors.New("path is not a git working tree")

	// ErrCommitFailed indicates staging or commit-object creation failed.
	ErrCommitFailed = errors.New("commit failed")
)

// Open opens the repository rooted exactly at path. Unlike plain git it does
// not walk up parent directories, so a registered path always names the
// working tree it manages.
func Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return repo, nil
}

// IsWorkingTree reports whether path is an openable git working tree.
func IsWorkingTree(path string) bool {
	_, err := Open(path)
	return err == nil
}

// CanonicalPath resolves path to an absolute path with symlinks evaluated.
// Registered repositories are always keyed by their canonical path.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return resolved, nil
}
