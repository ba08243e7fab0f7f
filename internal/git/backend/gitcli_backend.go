package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (g *gitCLI) ListFiles(ctx context.Context) ([]string, error) {
	out, err := g.runGitCommand(ctx, []string{"ls-files", "-z"}, "git ls-files")
	if err != nil {
		return nil, err
	}
	return parseLsFilesOutput(out), nil
}

func (g *gitCLI) LastCommitTime(ctx context.Context, path string) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("path not specified")
	}
	// --literal-pathspecs keeps names such as "*.go" or ":x" from being expanded.
	out, err := g.runGitCommand(
		ctx,
		[]string{"--literal-pathspecs", "log", "-1", "--no-color", "--format=%ct", "--", path},
		"git log",
	)
	if err != nil {
		return 0, err
	}
	return parseCommitTime(out)
}

func parseLsFilesOutput(out string) []string {
	var files []string
	for _, name := range strings.Split(out, "\x00") {
		if name == "" {
			continue
		}
		files = append(files, name)
	}
	return files
}

func parseCommitTime(out string) (int64, error) {
	s := strings.TrimSpace(out)
	if s == "" {
		return 0, ErrNoCommits
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse commit time %q: %w", s, err)
	}
	return ts, nil
}
