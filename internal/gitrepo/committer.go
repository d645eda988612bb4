package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Committer stages all working-tree changes and records a commit on the
// current branch. It never touches remotes.
type Committer struct{}

// Commit stages every modified, deleted, and untracked file and creates a
// commit with message as its sole message, using the repository's configured
// author identity. Returns the new commit hash.
func (c Committer) Commit(path, message string) (string, error) {
	repo, err := Open(path)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: worktree error: %v", ErrCommitFailed, err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("%w: staging failed: %v", ErrCommitFailed, err)
	}

	// Author/committer come from the repository's git config; go-git rejects
	// the commit when no identity is configured.
	hash, err := worktree.Commit(message, &git.CommitOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	return hash.String(), nil
}
