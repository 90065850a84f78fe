// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"container/heap"
	"sort"

	"github.com/pdiddy/citecontext/pkg/types"
)

// candidate is one heap entry: the citing paper's citation count, a
// monotonically increasing insertion sequence breaking ties (first seen
// wins), and the citation itself.
type candidate struct {
	count int
	seq   int
	cite  types.Citation
}

// candidateHeap is a min-heap by (count, seq). Among equal counts the
// later-seen entry sits closer to the root, so truncation evicts it
// first and the earlier-seen entry survives.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count < h[j].count
	}
	return h[i].seq > h[j].seq
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Selector maintains the top-K citations by citing-paper citation count
// over a stream, applying inclusion filters before admission. The heap
// never exceeds capacity K.
type Selector struct {
	capacity        int
	influentialOnly bool
	requireContext  bool

	heap candidateHeap
	seq  int
}

// NewSelector returns a selector keeping the top capacity citations.
// A capacity below 1 is treated as 1.
func NewSelector(capacity int, influentialOnly, requireContext bool) *Selector {
	if capacity < 1 {
		capacity = 1
	}
	return &Selector{
		capacity:        capacity,
		influentialOnly: influentialOnly,
		requireContext:  requireContext,
	}
}

// Offer applies the filters and admits the citation into the bounded
// heap. Only an explicit isInfluential == false is rejected by the
// influential filter; an unknown flag passes.
func (s *Selector) Offer(c types.Citation) {
	if s.influentialOnly && c.IsInfluential != nil && !*c.IsInfluential {
		return
	}
	if s.requireContext && len(c.Contexts) == 0 {
		return
	}

	s.seq++
	entry := candidate{count: c.CitingPaper.CitationCount, seq: s.seq, cite: c}

	if len(s.heap) < s.capacity {
		heap.Push(&s.heap, entry)
		return
	}
	// Full: only a strictly larger count displaces the minimum, so an
	// equal-count newcomer loses to the earlier-seen entry.
	if entry.count > s.heap[0].count {
		s.heap[0] = entry
		heap.Fix(&s.heap, 0)
	}
}

// Top drains the heap and returns the retained citations ordered by
// citing-paper citation count descending, earlier-seen first among ties.
func (s *Selector) Top() []types.Citation {
	drained := append(candidateHeap(nil), s.heap...)
	sort.Slice(drained, func(i, j int) bool {
		if drained[i].count != drained[j].count {
			return drained[i].count > drained[j].count
		}
		return drained[i].seq < drained[j].seq
	})

	out := make([]types.Citation, len(drained))
	for i, e := range drained {
		out[i] = e.cite
	}
	return out
}
