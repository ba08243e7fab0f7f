// Package gittest builds throwaway repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type Repo struct {
	Dir string

	t  testing.TB
	wt *gitlib.Worktree
}

// NewRepo initializes an empty non-bare repository in a temporary directory.
func NewRepo(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	return &Repo{Dir: dir, t: t, wt: wt}
}

// Write creates or overwrites a file and stages it without committing.
func (r *Repo) Write(name, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
	if _, err := r.wt.Add(name); err != nil {
		r.t.Fatalf("add %s: %v", name, err)
	}
}

// Commit writes files and records a commit whose author and committer time is when.
// The new commit's parent is the current HEAD.
func (r *Repo) Commit(when time.Time, files map[string]string) plumbing.Hash {
	r.t.Helper()
	return r.CommitWithParents(when, files)
}

// CommitWithParents is like Commit but records the given parents instead of
// HEAD, which allows building side branches and merges. HEAD moves to the new
// commit.
func (r *Repo) CommitWithParents(when time.Time, files map[string]string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	for name, content := range files {
		r.Write(name, content)
	}
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	hash, err := r.wt.Commit("update", &gitlib.CommitOptions{Author: sig, Committer: sig, Parents: parents})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return hash
}

// RequireGit skips the test when no git executable is available.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}
}
