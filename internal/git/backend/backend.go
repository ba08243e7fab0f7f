package backend

import (
	"context"
	"errors"
)

// ErrNoCommits is returned when no commit in the current history touches a path.
var ErrNoCommits = errors.New("no commits found for path")

// Backend abstracts access to repository data.
//
// The default implementation shells out to the git executable, but the interface
// allows alternative implementations (e.g. pure-Go) without changing callers.
type Backend interface {
	RepoPath() string

	// ListFiles returns the tracked paths below the opened directory, relative to it.
	ListFiles(ctx context.Context) ([]string, error)
	// LastCommitTime returns the committer time (Unix seconds) of the most recent
	// commit that touched path. Safe for concurrent use.
	LastCommitTime(ctx context.Context, path string) (int64, error)
}

// BatchBackend resolves commit times for many paths with a single walk over history.
// Paths that never show up in the walk are absent from the result.
type BatchBackend interface {
	Backend
	LastCommitTimes(ctx context.Context, paths []string) (map[string]int64, error)
}
