package backend

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/thiagokokada/git-age/internal/git/gittest"
)

func TestParseLsFilesOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "a.txt\x00", want: []string{"a.txt"}},
		{name: "many", in: "a.txt\x00dir/b.go\x00", want: []string{"a.txt", "dir/b.go"}},
		{name: "no_trailing_nul", in: "a.txt\x00b.txt", want: []string{"a.txt", "b.txt"}},
		{name: "special_chars", in: "with space.txt\x00tab\there\x00new\nline\x00", want: []string{"with space.txt", "tab\there", "new\nline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseLsFilesOutput(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("parseLsFilesOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCommitTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "plain", in: "1700000000\n", want: 1700000000},
		{name: "surrounding_space", in: "  42 \n", want: 42},
		{name: "empty", in: "", wantErr: true},
		{name: "not_a_number", in: "yesterday\n", wantErr: true},
		{name: "two_lines", in: "1\n2\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseCommitTime(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCommitTime(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommitTime(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("parseCommitTime(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCommitTime_EmptyIsNoCommits(t *testing.T) {
	t.Parallel()

	if _, err := parseCommitTime(" \n"); !errors.Is(err, ErrNoCommits) {
		t.Fatalf("expected ErrNoCommits, got %v", err)
	}
}

func TestLogNameParser(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"\x1e300\x1f\nc.txt",
		"a.txt",
		"",
		"\n\x1e200\x1f",
		"\n\x1e100\x1f\na.txt",
		"b.txt",
		"",
	}
	type hit struct {
		name string
		when int64
	}
	var got []hit
	var p logNameParser
	for _, tok := range tokens {
		name, ok, err := p.feed(tok)
		if err != nil {
			t.Fatalf("feed(%q) error = %v", tok, err)
		}
		if ok {
			got = append(got, hit{name: name, when: p.when})
		}
	}
	want := []hit{
		{name: "c.txt", when: 300},
		{name: "a.txt", when: 300},
		{name: "a.txt", when: 100},
		{name: "b.txt", when: 100},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("parsed %+v, want %+v", got, want)
	}
}

func TestLogNameParser_BackToBackHeaders(t *testing.T) {
	t.Parallel()

	var p logNameParser
	name, ok, err := p.feed("\x1e20\x1f\n\x1e10\x1f\nx.go")
	if err != nil {
		t.Fatalf("feed error = %v", err)
	}
	if !ok || name != "x.go" || p.when != 10 {
		t.Fatalf("feed = %q, %v (when=%d), want x.go at 10", name, ok, p.when)
	}
}

func TestLogNameParser_Errors(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"\x1e123", "\x1eabc\x1f"} {
		var p logNameParser
		if _, _, err := p.feed(tok); err == nil {
			t.Fatalf("feed(%q) expected error", tok)
		}
	}
}

func TestLogNameParser_IgnoresNamesBeforeHeader(t *testing.T) {
	t.Parallel()

	var p logNameParser
	if _, ok, err := p.feed("stray.txt"); ok || err != nil {
		t.Fatalf("feed = %v, %v; want ignored", ok, err)
	}
}

func newHistoryRepo(t *testing.T) (*gittest.Repo, time.Time) {
	t.Helper()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := gittest.NewRepo(t)
	repo.Commit(base, map[string]string{"old.txt": "old", "sub/keep.go": "package sub", "sub/edit.go": "v1"})
	repo.Commit(base.Add(24*time.Hour), map[string]string{"sub/edit.go": "v2", "*.txt": "glob"})
	repo.Commit(base.Add(48*time.Hour), map[string]string{"new.txt": "new"})
	return repo, base
}

func TestGitCLI_ListFilesAndLastCommitTime(t *testing.T) {
	gittest.RequireGit(t)
	repo, base := newHistoryRepo(t)

	b, err := OpenCLI(repo.Dir)
	if err != nil {
		t.Fatalf("OpenCLI: %v", err)
	}
	ctx := context.Background()
	files, err := b.ListFiles(ctx)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"*.txt", "new.txt", "old.txt", "sub/edit.go", "sub/keep.go"}
	if !slices.Equal(files, want) {
		t.Fatalf("ListFiles = %q, want %q", files, want)
	}

	wantTimes := map[string]time.Time{
		"old.txt":     base,
		"sub/keep.go": base,
		"sub/edit.go": base.Add(24 * time.Hour),
		"*.txt":       base.Add(24 * time.Hour),
		"new.txt":     base.Add(48 * time.Hour),
	}
	for name, when := range wantTimes {
		got, err := b.LastCommitTime(ctx, name)
		if err != nil {
			t.Fatalf("LastCommitTime(%q): %v", name, err)
		}
		if got != when.Unix() {
			t.Fatalf("LastCommitTime(%q) = %d, want %d", name, got, when.Unix())
		}
	}
}

func TestGitCLI_Subdirectory(t *testing.T) {
	gittest.RequireGit(t)
	repo, base := newHistoryRepo(t)

	b, err := OpenCLI(filepath.Join(repo.Dir, "sub"))
	if err != nil {
		t.Fatalf("OpenCLI: %v", err)
	}
	files, err := b.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if want := []string{"edit.go", "keep.go"}; !slices.Equal(files, want) {
		t.Fatalf("ListFiles = %q, want %q", files, want)
	}
	got, err := b.LastCommitTime(context.Background(), "edit.go")
	if err != nil {
		t.Fatalf("LastCommitTime: %v", err)
	}
	if want := base.Add(24 * time.Hour).Unix(); got != want {
		t.Fatalf("LastCommitTime = %d, want %d", got, want)
	}
}

func TestGitCLI_LastCommitTimes(t *testing.T) {
	gittest.RequireGit(t)
	repo, base := newHistoryRepo(t)

	b, err := OpenCLI(repo.Dir)
	if err != nil {
		t.Fatalf("OpenCLI: %v", err)
	}
	bb, ok := b.(BatchBackend)
	if !ok {
		t.Fatal("CLI backend should support batch lookups")
	}
	got, err := bb.LastCommitTimes(context.Background(), []string{"old.txt", "sub/edit.go", "missing.txt"})
	if err != nil {
		t.Fatalf("LastCommitTimes: %v", err)
	}
	want := map[string]int64{
		"old.txt":     base.Unix(),
		"sub/edit.go": base.Add(24 * time.Hour).Unix(),
	}
	if len(got) != len(want) {
		t.Fatalf("LastCommitTimes = %v, want %v", got, want)
	}
	for name, ts := range want {
		if got[name] != ts {
			t.Fatalf("LastCommitTimes[%q] = %d, want %d", name, got[name], ts)
		}
	}
}

func TestGitCLI_StagedFileHasNoCommits(t *testing.T) {
	gittest.RequireGit(t)
	repo, _ := newHistoryRepo(t)
	repo.Write("staged.txt", "not committed yet")

	b, err := OpenCLI(repo.Dir)
	if err != nil {
		t.Fatalf("OpenCLI: %v", err)
	}
	if _, err := b.LastCommitTime(context.Background(), "staged.txt"); !errors.Is(err, ErrNoCommits) {
		t.Fatalf("expected ErrNoCommits, got %v", err)
	}
}

func TestOpenCLI_NotARepository(t *testing.T) {
	gittest.RequireGit(t)

	_, err := OpenCLI(t.TempDir())
	if err == nil {
		t.Fatal("expected error outside of a repository")
	}
	if !strings.Contains(err.Error(), "open repository") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBackendsAgreeOnConflictMerge(t *testing.T) {
	gittest.RequireGit(t)

	at := func(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
	repo := gittest.NewRepo(t)
	base := repo.Commit(at(1_000_000_000), map[string]string{"f": "base\n", "untouched": "same\n"})
	side := repo.CommitWithParents(at(1_000_001_000), map[string]string{"f": "side\n"}, base)
	mainline := repo.CommitWithParents(at(1_000_002_000), map[string]string{"f": "main\n"}, base)
	// The resolution differs from both parents, so the merge itself touches f.
	repo.CommitWithParents(at(1_000_003_000), map[string]string{"f": "resolved\n"}, mainline, side)

	want := map[string]int64{"f": 1_000_003_000, "untouched": 1_000_000_000}
	ctx := context.Background()

	cli, err := OpenCLI(repo.Dir)
	if err != nil {
		t.Fatalf("OpenCLI: %v", err)
	}
	native, err := OpenNative(repo.Dir)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	for name, ts := range want {
		for label, b := range map[string]Backend{"cli": cli, "native": native} {
			got, err := b.LastCommitTime(ctx, name)
			if err != nil {
				t.Fatalf("%s LastCommitTime(%q): %v", label, name, err)
			}
			if got != ts {
				t.Fatalf("%s LastCommitTime(%q) = %d, want %d", label, name, got, ts)
			}
		}
	}

	batch, err := cli.(BatchBackend).LastCommitTimes(ctx, []string{"f", "untouched"})
	if err != nil {
		t.Fatalf("LastCommitTimes: %v", err)
	}
	if len(batch) != len(want) {
		t.Fatalf("LastCommitTimes = %v, want %v", batch, want)
	}
	for name, ts := range want {
		if batch[name] != ts {
			t.Fatalf("LastCommitTimes[%q] = %d, want %d", name, batch[name], ts)
		}
	}
}
