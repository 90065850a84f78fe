// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterLines(t *testing.T) {
	var buf bytes.Buffer
	w := &Writer{Out: &buf}

	w.Start("papers", 3)
	w.Advance(1)
	w.Advance(2)
	w.Finish()

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"papers: 0/3", "papers: 1/3", "papers: 3/3", "papers: done"}
	if len(got) != len(want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNopIsSilent(t *testing.T) {
	// Must not panic without a prior Start.
	var n Nop
	n.Advance(5)
	n.Finish()
	n.Start("x", 1)
}
