package git

import (
	"errors"
	"fmt"
	"strings"

	gitbackend "github.com/thiagokokada/git-age/internal/git/backend"
)

// Kind selects how repository data is read.
type Kind string

const (
	// KindCLI runs one git process per file.
	KindCLI Kind = "cli"
	// KindBatch reads every commit time from a single git log stream.
	KindBatch Kind = "batch"
	// KindNative walks history in-process with go-git.
	KindNative Kind = "native"
)

var ErrUnknownKind = errors.New("unknown backend")

func Kinds() []Kind {
	return []Kind{KindCLI, KindBatch, KindNative}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// Batched reports whether commit times should be resolved in one pass.
func (k Kind) Batched() bool {
	return k == KindBatch
}

func Open(repoPath string, kind Kind) (gitbackend.Backend, error) {
	switch kind {
	case KindCLI, KindBatch:
		return gitbackend.OpenCLI(repoPath)
	case KindNative:
		return gitbackend.OpenNative(repoPath)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}
