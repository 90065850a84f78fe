// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress decouples the pipeline from progress display. The core
// calls a Reporter; whether anything is shown is the caller's choice.
package progress

import (
	"fmt"
	"io"
)

// Reporter receives pipeline progress. Implementations must tolerate
// Advance/Finish without a prior Start.
type Reporter interface {
	Start(label string, total int)
	Advance(n int)
	Finish()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(string, int) {}
func (Nop) Advance(int)       {}
func (Nop) Finish()           {}

// Writer prints simple status lines to an io.Writer.
type Writer struct {
	Out io.Writer

	label string
	total int
	done  int
}

func (w *Writer) Start(label string, total int) {
	w.label, w.total, w.done = label, total, 0
	fmt.Fprintf(w.Out, "%s: 0/%d\n", label, total)
}

func (w *Writer) Advance(n int) {
	w.done += n
	fmt.Fprintf(w.Out, "%s: %d/%d\n", w.label, w.done, w.total)
}

func (w *Writer) Finish() {
	fmt.Fprintf(w.Out, "%s: done\n", w.label)
}
