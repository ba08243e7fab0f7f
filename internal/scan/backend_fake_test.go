package scan

import (
	"context"
	"errors"

	gitbackend "github.com/thiagokokada/git-age/internal/git/backend"
)

type fakeBackend struct {
	repoPath string

	listFilesFunc      func(ctx context.Context) ([]string, error)
	lastCommitTimeFunc func(ctx context.Context, path string) (int64, error)
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) ListFiles(ctx context.Context) ([]string, error) {
	if f.listFilesFunc != nil {
		return f.listFilesFunc(ctx)
	}
	return nil, errors.New("unexpected ListFiles call")
}

func (f *fakeBackend) LastCommitTime(ctx context.Context, path string) (int64, error) {
	if f.lastCommitTimeFunc != nil {
		return f.lastCommitTimeFunc(ctx, path)
	}
	return 0, errors.New("unexpected LastCommitTime call")
}

type fakeBatchBackend struct {
	fakeBackend

	lastCommitTimesFunc func(ctx context.Context, paths []string) (map[string]int64, error)
}

var _ gitbackend.BatchBackend = (*fakeBatchBackend)(nil)

func (f *fakeBatchBackend) LastCommitTimes(ctx context.Context, paths []string) (map[string]int64, error) {
	if f.lastCommitTimesFunc != nil {
		return f.lastCommitTimesFunc(ctx, paths)
	}
	return nil, errors.New("unexpected LastCommitTimes call")
}

func listOf(files ...string) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) { return files, nil }
}

func timesFrom(times map[string]int64) func(context.Context, string) (int64, error) {
	return func(_ context.Context, path string) (int64, error) {
		ts, ok := times[path]
		if !ok {
			return 0, gitbackend.ErrNoCommits
		}
		return ts, nil
	}
}
