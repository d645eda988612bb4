package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffCap is the hard limit, in characters, on diff text handed to the
// summarization service. It bounds the request, not the commit message.
const DiffCap = 1500

// DiffSnapshot is the bounded textual diff of a dirty working tree.
// Length counts characters, not bytes.
type DiffSnapshot struct {
	Text      string
	Length    int
	Truncated bool
}

// Inspector detects uncommitted changes and renders them as patch text.
// Inspection is read-only; nothing is staged here.
type Inspector struct{}

// Extract returns the working-tree diff for the repository at path, or
// (nil, nil) when the tree is clean. Untracked files count as changes.
func (i Inspector) Extract(path string) (*DiffSnapshot, error) {
	repo, err := Open(path)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree error: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("status error: %w", err)
	}
	if status.IsClean() {
		return nil, nil
	}

	headTree := headTreeOrNil(repo)

	// Map iteration order is random; sort so the rendered diff is stable.
	files := make([]string, 0, len(status))
	for file, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		files = append(files, file)
	}
	sort.Strings(files)

	var sb strings.Builder
	for _, file := range files {
		sb.WriteString(renderFileDiff(path, file, headTree))
		if utf8.RuneCountInString(sb.String()) > DiffCap {
			break
		}
	}

	// Cap by character so a multi-byte rune is never split mid-sequence.
	text := sb.String()
	truncated := false
	runes := []rune(text)
	if len(runes) > DiffCap {
		runes = runes[:DiffCap]
		text = string(runes)
		truncated = true
	}

	return &DiffSnapshot{Text: text, Length: len(runes), Truncated: truncated}, nil
}

// headTreeOrNil resolves the tree of the current HEAD commit. A nil return
// means an unborn branch; every file then diffs as a pure addition.
func headTreeOrNil(repo *git.Repository) *object.Tree {
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil
		}
		return nil
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil
	}
	return tree
}

func renderFileDiff(repoPath, file string, headTree *object.Tree) string {
	oldContent := committedContents(headTree, file)
	newContent := workingTreeContents(repoPath, file)

	header := fmt.Sprintf("--- a/%s\n+++ b/%s\n", file, file)
	if isBinary(oldContent) || isBinary(newContent) {
		return header + fmt.Sprintf("Binary file %s differs\n", file)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	patch := dmp.PatchToText(dmp.PatchMake(oldContent, diffs))
	return header + patch
}

func committedContents(headTree *object.Tree, file string) string {
	if headTree == nil {
		return ""
	}
	entry, err := headTree.File(file)
	if err != nil {
		return ""
	}
	contents, err := entry.Contents()
	if err != nil {
		return ""
	}
	return contents
}

func workingTreeContents(repoPath, file string) string {
	data, err := os.ReadFile(filepath.Join(repoPath, file))
	if err != nil {
		// Deleted or unreadable files diff against empty content.
		return ""
	}
	return string(data)
}

func isBinary(content string) bool {
	return bytes.ContainsRune([]byte(content), 0)
}
