// Package report orders scanned files by commit time and prints them.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/thiagokokada/git-age/internal/scan"
)

// Sort orders infos oldest first. Files committed in the same second are
// ordered by name so the output does not depend on lookup completion order.
func Sort(infos []scan.FileInfo) {
	slices.SortStableFunc(infos, func(a, b scan.FileInfo) int {
		if c := cmp.Compare(a.CommitTime, b.CommitTime); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
}

type Writer struct {
	out    io.Writer
	now    func() time.Time
	colors map[Bucket]*color.Color
}

// NewWriter returns a Writer that colorizes age phrases when colorize is set.
func NewWriter(out io.Writer, colorize bool) *Writer {
	w := &Writer{
		out: out,
		now: time.Now,
		colors: map[Bucket]*color.Color{
			BucketYears:   color.New(color.FgRed),
			BucketMonths:  color.New(color.FgYellow),
			BucketDays:    color.New(color.FgGreen),
			BucketHours:   color.New(color.FgCyan),
			BucketMinutes: color.New(color.FgCyan),
			BucketJustNow: color.New(color.FgCyan, color.Bold),
		},
	}
	for _, c := range w.colors {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return w
}

// WithClock replaces the time source used to compute ages.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Write sorts infos in place and prints one "<file> (<age>)" line per entry.
func (w *Writer) Write(infos []scan.FileInfo) error {
	Sort(infos)
	now := w.now()
	for _, info := range infos {
		bucket, _ := Classify(now, info.CommitTime)
		phrase := w.colors[bucket].Sprint(Age(now, info.CommitTime))
		if _, err := fmt.Fprintf(w.out, "%s (%s)\n", info.Filename, phrase); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
