// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/pdiddy/citecontext/pkg/types"
)

func boolPtr(b bool) *bool { return &b }

func citationWithCount(id string, count int) types.Citation {
	return types.Citation{
		CitingPaper: types.Paper{PaperID: id, CitationCount: count},
		Contexts:    []string{"some context"},
	}
}

func TestSelectorKeepsTopK(t *testing.T) {
	s := NewSelector(2, false, false)
	for i, count := range []int{10, 3, 7, 1, 9} {
		s.Offer(citationWithCount(fmt.Sprintf("p%d", i), count))
	}

	top := s.Top()
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].CitingPaper.CitationCount != 10 {
		t.Errorf("top[0] count = %d, want 10", top[0].CitingPaper.CitationCount)
	}
	if top[1].CitingPaper.CitationCount != 9 {
		t.Errorf("top[1] count = %d, want 9", top[1].CitingPaper.CitationCount)
	}
}

func TestSelectorFewerThanK(t *testing.T) {
	s := NewSelector(5, false, false)
	s.Offer(citationWithCount("a", 3))
	s.Offer(citationWithCount("b", 8))

	top := s.Top()
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].CitingPaper.PaperID != "b" || top[1].CitingPaper.PaperID != "a" {
		t.Errorf("order = [%s %s], want [b a]", top[0].CitingPaper.PaperID, top[1].CitingPaper.PaperID)
	}
}

func TestSelectorFirstSeenWinsOnTies(t *testing.T) {
	// Three equal-count citations into a capacity-2 selector: the first
	// two seen must survive, the third must be rejected.
	s := NewSelector(2, false, false)
	s.Offer(citationWithCount("first", 5))
	s.Offer(citationWithCount("second", 5))
	s.Offer(citationWithCount("third", 5))

	top := s.Top()
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].CitingPaper.PaperID != "first" {
		t.Errorf("top[0] = %s, want first", top[0].CitingPaper.PaperID)
	}
	if top[1].CitingPaper.PaperID != "second" {
		t.Errorf("top[1] = %s, want second", top[1].CitingPaper.PaperID)
	}
}

func TestSelectorTieOnEvictionBoundary(t *testing.T) {
	// A newcomer tying the current minimum must not displace it.
	s := NewSelector(1, false, false)
	s.Offer(citationWithCount("early", 4))
	s.Offer(citationWithCount("late", 4))

	top := s.Top()
	if len(top) != 1 || top[0].CitingPaper.PaperID != "early" {
		t.Fatalf("top = %v, want [early]", paperIDs(top))
	}
}

func TestSelectorInfluentialFilter(t *testing.T) {
	tests := []struct {
		name          string
		isInfluential *bool
		wantKept      bool
	}{
		{"explicit true kept", boolPtr(true), true},
		{"explicit false rejected", boolPtr(false), false},
		{"unknown flag kept", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(3, true, false)
			c := citationWithCount("p", 1)
			c.IsInfluential = tt.isInfluential
			s.Offer(c)

			kept := len(s.Top()) == 1
			if kept != tt.wantKept {
				t.Errorf("kept = %v, want %v", kept, tt.wantKept)
			}
		})
	}
}

func TestSelectorContextFilter(t *testing.T) {
	s := NewSelector(3, false, true)

	withContext := citationWithCount("with", 5)
	noContext := types.Citation{CitingPaper: types.Paper{PaperID: "without", CitationCount: 9}}

	s.Offer(withContext)
	s.Offer(noContext)

	top := s.Top()
	if len(top) != 1 || top[0].CitingPaper.PaperID != "with" {
		t.Fatalf("top = %v, want [with]", paperIDs(top))
	}
}

func TestSelectorFiltersDisabled(t *testing.T) {
	s := NewSelector(3, false, false)
	c := types.Citation{CitingPaper: types.Paper{PaperID: "bare", CitationCount: 1}, IsInfluential: boolPtr(false)}
	s.Offer(c)

	if len(s.Top()) != 1 {
		t.Error("disabled filters must admit everything")
	}
}

func TestSelectorCapacityFloor(t *testing.T) {
	s := NewSelector(0, false, false)
	s.Offer(citationWithCount("a", 1))
	s.Offer(citationWithCount("b", 2))

	top := s.Top()
	if len(top) != 1 || top[0].CitingPaper.PaperID != "b" {
		t.Fatalf("top = %v, want [b]", paperIDs(top))
	}
}

func TestSelectorMatchesSortedReference(t *testing.T) {
	// Random stream against a sort-then-truncate reference.
	rng := rand.New(rand.NewSource(42))
	const n, k = 500, 10

	counts := make([]int, n)
	s := NewSelector(k, false, false)
	for i := range counts {
		counts[i] = rng.Intn(100)
		s.Offer(citationWithCount(fmt.Sprintf("p%d", i), counts[i]))
	}

	ref := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(ref)))
	ref = ref[:k]

	top := s.Top()
	if len(top) != k {
		t.Fatalf("len(top) = %d, want %d", len(top), k)
	}
	for i, c := range top {
		if c.CitingPaper.CitationCount != ref[i] {
			t.Errorf("top[%d] count = %d, want %d", i, c.CitingPaper.CitationCount, ref[i])
		}
	}
}

func paperIDs(cs []types.Citation) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.CitingPaper.PaperID
	}
	return ids
}
