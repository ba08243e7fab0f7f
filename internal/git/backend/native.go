package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// goGit reads the repository with go-git instead of spawning processes.
type goGit struct {
	root string
	// prefix is the opened directory relative to root, slash separated, or
	// empty when the root itself was opened.
	prefix string
}

var _ Backend = (*goGit)(nil)

func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := wt.Filesystem.Root()
	prefix, err := relativePrefix(root, abs)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &goGit{root: root, prefix: prefix}, nil
}

func relativePrefix(root, dir string) (string, error) {
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if d, err := filepath.EvalSymlinks(dir); err == nil {
		dir = d
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside of %s", dir, root)
	}
	return rel, nil
}

func (n *goGit) RepoPath() string {
	if n == nil {
		return ""
	}
	return n.root
}

// open returns a fresh handle on every call; go-git repositories are not safe
// to share between goroutines walking history at the same time.
func (n *goGit) open() (*gitlib.Repository, error) {
	if n == nil || n.root == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	return gitlib.PlainOpen(n.root)
}

func (n *goGit) ListFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo, err := n.open()
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	files := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		name, ok := n.stripPrefix(entry.Name)
		if !ok {
			continue
		}
		// Unmerged paths have one entry per stage.
		if len(files) > 0 && files[len(files)-1] == name {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func (n *goGit) LastCommitTime(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("path not specified")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	repo, err := n.open()
	if err != nil {
		return 0, fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return 0, ErrNoCommits
		}
		return 0, fmt.Errorf("resolve HEAD: %w", err)
	}
	full := n.withPrefix(name)
	iter, err := repo.Log(&gitlib.LogOptions{
		From:     head.Hash(),
		Order:    gitlib.LogOrderCommitterTime,
		FileName: &full,
	})
	if err != nil {
		return 0, fmt.Errorf("read commits: %w", err)
	}
	defer iter.Close()
	commit, err := iter.Next()
	if err != nil {
		if err == io.EOF {
			return 0, ErrNoCommits
		}
		return 0, fmt.Errorf("iterate commits: %w", err)
	}
	return commit.Committer.When.Unix(), nil
}

func (n *goGit) stripPrefix(name string) (string, bool) {
	if n.prefix == "" {
		return name, true
	}
	rest, ok := strings.CutPrefix(name, n.prefix+"/")
	return rest, ok && rest != ""
}

func (n *goGit) withPrefix(name string) string {
	name = filepath.ToSlash(name)
	if n.prefix == "" {
		return name
	}
	return path.Join(n.prefix, name)
}
