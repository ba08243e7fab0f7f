// Package scan fans out per-file commit time lookups over a bounded worker pool.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	gitbackend "github.com/thiagokokada/git-age/internal/git/backend"
)

// FileInfo is one tracked file and the committer time (Unix seconds) of the
// last commit that touched it.
type FileInfo struct {
	Filename   string
	CommitTime int64
}

type Scanner struct {
	// Jobs bounds the number of concurrent lookups. Zero or less means runtime.NumCPU().
	Jobs int
	// Batch resolves every file from a single history walk when the backend
	// supports it, falling back to per-file lookups if that fails.
	Batch bool
}

func (s Scanner) jobs() int {
	if s.Jobs > 0 {
		return s.Jobs
	}
	return runtime.NumCPU()
}

// Scan lists the tracked files and looks up their commit times. Failing to list
// files is returned as an error; a file whose lookup fails is left out of the
// result. Successful entries keep the order in which files were listed.
func (s Scanner) Scan(ctx context.Context, b gitbackend.Backend) ([]FileInfo, error) {
	files, err := b.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	slog.Debug("listed tracked files", slog.Int("count", len(files)), slog.String("repo", b.RepoPath()))
	if len(files) == 0 {
		return nil, nil
	}
	if s.Batch {
		if bb, ok := b.(gitbackend.BatchBackend); ok {
			infos, err := scanBatch(ctx, bb, files)
			if err == nil {
				return infos, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Debug("batch lookup failed, querying files one by one", slog.Any("error", err))
		} else {
			slog.Debug("backend has no batch lookup, querying files one by one")
		}
	}
	return s.scanEach(ctx, b, files)
}

func (s Scanner) scanEach(ctx context.Context, b gitbackend.Backend, files []string) ([]FileInfo, error) {
	jobs := s.jobs()
	slog.Debug("querying commit times", slog.Int("files", len(files)), slog.Int("jobs", jobs))

	// Every worker owns one slot, so results need no locking.
	slots := make([]FileInfo, len(files))
	found := make([]bool, len(files))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, name := range files {
		g.Go(func() error {
			ts, err := b.LastCommitTime(ctx, name)
			if err != nil {
				slog.Debug("skipping file", slog.String("file", name), slog.Any("error", err))
				return nil
			}
			slots[i] = FileInfo{Filename: name, CommitTime: ts}
			found[i] = true
			return nil
		})
	}
	// Workers never fail the group; per-file errors only drop that file.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(files))
	for i, ok := range found {
		if ok {
			infos = append(infos, slots[i])
		}
	}
	return infos, nil
}

func scanBatch(ctx context.Context, b gitbackend.BatchBackend, files []string) ([]FileInfo, error) {
	times, err := b.LastCommitTimes(ctx, files)
	if err != nil {
		return nil, err
	}
	infos := make([]FileInfo, 0, len(files))
	for _, name := range files {
		ts, ok := times[name]
		if !ok {
			slog.Debug("skipping file", slog.String("file", name), slog.Any("error", gitbackend.ErrNoCommits))
			continue
		}
		infos = append(infos, FileInfo{Filename: name, CommitTime: ts})
	}
	return infos, nil
}
