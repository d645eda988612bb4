package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/autocommit/autocommit/internal/generator"
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

var timestampMessage = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

func initRepoWithCommit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	// The run log must stay out of tracked content, or it becomes a change
	// that triggers further commits.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(RunLogName+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("original contents here\n"), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, worktree.AddWithOptions(&git.AddOptions{All: true}))
	_, err = worktree.Commit("initial", &git.CommitOptions{})
	require.NoError(t, err)

	return dir
}

// One modified tracked file and no credential: the run commits with a
// timestamp message and leaves the tree clean.
func TestRunAgainstRealRepository(t *testing.T) {
	dir := initRepoWithCommit(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("edited contents, forty chars or so\n"), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := NewDefault(generator.New(generator.Config{}), logger)

	result, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, api.OutcomeCommitted, result.Outcome)
	require.Equal(t, generator.SourceFallback, result.Message.Source)
	require.Regexp(t, timestampMessage, result.Message.Text)

	log, err := os.ReadFile(filepath.Join(dir, RunLogName))
	require.NoError(t, err)
	require.Contains(t, string(log), "outcome=committed")

	// Immediately re-running lands in no-op: the tree is clean again.
	second, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, api.OutcomeNoOp, second.Outcome)
}
