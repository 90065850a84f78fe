// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"github.com/pdiddy/citecontext/pkg/types"
)

// YearResolver resolves an author's earliest publication year. The
// Semantic Scholar client implements it; tests supply fakes.
type YearResolver interface {
	EarliestPublicationYear(ctx context.Context, authorID string, minYear, maxYear int) (*int, error)
}

// pickEarliestPublishingAuthor returns the co-author with the earliest
// known publication year, enriched with that year. Authors without an
// authorId or without any publication at or before cutoffYear are passed
// over; when no co-author resolves, the first author is returned with a
// nil year as a fallback record.
//
// memo caches resolutions across citing papers within one run, so a
// prolific co-author is only resolved once per run regardless of how
// many retained citations they appear on.
func pickEarliestPublishingAuthor(ctx context.Context, resolver YearResolver, authors []types.Author, memo map[string]*int, cutoffYear int) (*types.Author, error) {
	if len(authors) == 0 {
		return nil, nil
	}

	var chosen *types.Author
	for i := range authors {
		a := authors[i]
		if a.AuthorID == "" {
			continue
		}

		year, ok := memo[a.AuthorID]
		if !ok {
			var err error
			year, err = resolver.EarliestPublicationYear(ctx, a.AuthorID, 0, cutoffYear)
			if err != nil {
				return nil, err
			}
			memo[a.AuthorID] = year
		}
		if year == nil {
			continue
		}

		if chosen == nil || *year < *chosen.EarliestPublicationYear {
			picked := a
			picked.EarliestPublicationYear = year
			chosen = &picked
		}
	}

	if chosen == nil {
		fallback := authors[0]
		fallback.EarliestPublicationYear = nil
		return &fallback, nil
	}
	return chosen, nil
}
