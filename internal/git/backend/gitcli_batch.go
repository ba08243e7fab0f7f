package backend

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Each commit header is wrapped in control characters so it can be told apart
// from the NUL-terminated file names that follow it.
const (
	recordStart = "\x1e"
	recordEnd   = "\x1f"
)

func (g *gitCLI) LastCommitTimes(ctx context.Context, paths []string) (map[string]int64, error) {
	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[p] = struct{}{}
	}
	res := make(map[string]int64, len(want))
	if len(want) == 0 {
		return res, nil
	}
	stream, err := g.startNameTimeStream(ctx)
	if err != nil {
		return nil, err
	}
	for len(res) < len(want) {
		name, ts, err := stream.Next()
		if err != nil {
			if err == io.EOF {
				slog.Debug("git log stream exhausted",
					slog.Int("resolved", len(res)),
					slog.Int("requested", len(want)),
				)
				return res, nil
			}
			_ = stream.Close()
			return nil, err
		}
		if _, ok := want[name]; !ok {
			continue
		}
		// History is newest first, so the first sighting wins.
		if _, done := res[name]; done {
			continue
		}
		res[name] = ts
	}
	// Every path is resolved; stop git before it walks the rest of history.
	if err := stream.Close(); err != nil {
		slog.Debug("git log stream close", slog.Any("error", err))
	}
	return res, nil
}

type nameTimeStream struct {
	cancel context.CancelFunc
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	r      *bufio.Reader
	parser logNameParser
	eof    bool

	waitOnce sync.Once
	waitErr  error
}

func (g *gitCLI) startNameTimeStream(parent context.Context) (*nameTimeStream, error) {
	if g == nil || g.dir == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	ctx, cancel := context.WithCancel(parent)
	cmd := exec.CommandContext(
		ctx,
		"git",
		"--no-pager",
		"-C",
		g.dir,
		"log",
		"--no-color",
		"--no-decorate",
		"--name-only",
		// Without --cc merges list no names; with it they list the paths that
		// differ from every parent, the same merges "git log -- <path>" keeps.
		"--cc",
		// Report names relative to the working directory, like ls-files does.
		"--relative",
		"-z",
		"--pretty=tformat:"+recordStart+"%ct"+recordEnd,
	)
	var stream nameTimeStream
	stream.cancel = cancel
	stream.cmd = cmd
	cmd.Stderr = &stream.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("git log stdout: %w", err)
	}
	stream.stdout = stdout
	stream.r = bufio.NewReader(stdout)
	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdout.Close()
		if stream.stderr.Len() > 0 {
			return nil, fmt.Errorf("git log start: %v: %s", err, strings.TrimSpace(stream.stderr.String()))
		}
		return nil, fmt.Errorf("git log start: %w", err)
	}
	return &stream, nil
}

// Next returns the next changed path together with the committer time of the
// commit it was listed under.
func (s *nameTimeStream) Next() (string, int64, error) {
	for !s.eof {
		tok, err := s.r.ReadString(0)
		if err != nil {
			if err != io.EOF {
				return "", 0, err
			}
			s.eof = true
		}
		name, ok, err := s.parser.feed(strings.TrimSuffix(tok, "\x00"))
		if err != nil {
			return "", 0, err
		}
		if ok {
			return name, s.parser.when, nil
		}
	}
	if err := s.wait(); err != nil {
		return "", 0, err
	}
	return "", 0, io.EOF
}

func (s *nameTimeStream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.stdout != nil {
		_ = s.stdout.Close()
	}
	return s.wait()
}

func (s *nameTimeStream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	if s.waitErr == nil {
		return nil
	}
	if s.stderr.Len() > 0 {
		return fmt.Errorf("git log: %v: %s", s.waitErr, strings.TrimSpace(s.stderr.String()))
	}
	return fmt.Errorf("git log: %w", s.waitErr)
}

// logNameParser consumes the NUL-separated tokens of
// "git log --name-only -z" and tracks which commit the current name belongs to.
type logNameParser struct {
	when int64
	seen bool
}

func (p *logNameParser) feed(tok string) (name string, ok bool, err error) {
	// git separates the header from the first name (and commits from each
	// other) with newlines, which end up glued to the next token.
	tok = strings.TrimLeft(tok, "\n")
	for strings.HasPrefix(tok, recordStart) {
		end := strings.Index(tok, recordEnd)
		if end < 0 {
			return "", false, fmt.Errorf("unexpected git log record: %q", tok)
		}
		ts, err := strconv.ParseInt(tok[len(recordStart):end], 10, 64)
		if err != nil {
			return "", false, fmt.Errorf("parse commit time: %w", err)
		}
		p.when = ts
		p.seen = true
		tok = strings.TrimLeft(tok[end+len(recordEnd):], "\n")
	}
	if tok == "" || !p.seen {
		return "", false, nil
	}
	return tok, true, nil
}
