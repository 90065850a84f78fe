// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/citecontext/pkg/types"
)

// Heuristic disambiguation defaults. Field-tuned constants with no
// stated rationale; overridable through ClientConfig.
const (
	defaultAmbiguityMargin  = 0.98
	defaultAffiliationBonus = 1.0
)

// AmbiguousAuthorError reports a strict-mode disambiguation failure: the
// runner-up scored within the ambiguity margin of the winner. Candidates
// holds the top results for manual selection.
type AmbiguousAuthorError struct {
	Name       string
	Candidates []types.AuthorCandidate
}

func (e *AmbiguousAuthorError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous author search for %q, pass --author-id; top candidates:", e.Name)
	for _, c := range e.Candidates {
		fmt.Fprintf(&b, "\n- %s (authorId=%s, affiliations=%v)", c.Name, c.AuthorID, c.Affiliations)
	}
	return b.String()
}

type authorSearchPage struct {
	Data []types.AuthorCandidate `json:"data"`
}

// ResolveAuthor searches the API for name and picks the best candidate by
// a heuristic score: paperCount/1000 + citationCount/1e6 + hIndex/1000,
// plus an affiliation bonus when affiliationKeyword matches any listed
// affiliation case-insensitively. In strict mode, a runner-up scoring
// within the ambiguity margin of the winner is a fatal
// AmbiguousAuthorError rather than a guess.
func (c *Client) ResolveAuthor(ctx context.Context, name, affiliationKeyword string, strict bool) (types.AuthorCandidate, error) {
	params := url.Values{
		"query":  {name},
		"limit":  {"10"},
		"fields": {"name,authorId,affiliations,paperCount,citationCount,hIndex"},
	}
	raw, err := c.fetchJSON(ctx, "/author/search", params)
	if err != nil {
		return types.AuthorCandidate{}, err
	}

	var page authorSearchPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return types.AuthorCandidate{}, fmt.Errorf("parsing author search: %w", err)
	}
	if len(page.Data) == 0 {
		return types.AuthorCandidate{}, fmt.Errorf("no author found for name %q", name)
	}

	bonus := c.cfg.AffiliationBonus
	if bonus == 0 {
		bonus = defaultAffiliationBonus
	}

	ranked := append([]types.AuthorCandidate(nil), page.Data...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return candidateScore(ranked[i], affiliationKeyword, bonus) >
			candidateScore(ranked[j], affiliationKeyword, bonus)
	})

	best := ranked[0]
	if strict && len(ranked) >= 2 {
		margin := c.cfg.AmbiguityMargin
		if margin == 0 {
			margin = defaultAmbiguityMargin
		}
		bestScore := candidateScore(best, affiliationKeyword, bonus)
		runnerUp := candidateScore(ranked[1], affiliationKeyword, bonus)
		if runnerUp >= bestScore*margin {
			top := ranked
			if len(top) > 5 {
				top = top[:5]
			}
			return types.AuthorCandidate{}, &AmbiguousAuthorError{Name: name, Candidates: top}
		}
	}
	return best, nil
}

func candidateScore(c types.AuthorCandidate, affiliationKeyword string, bonus float64) float64 {
	s := float64(c.PaperCount)/1000.0 +
		float64(c.CitationCount)/1_000_000.0 +
		float64(c.HIndex)/1000.0
	if affiliationKeyword != "" {
		affs := strings.ToLower(strings.Join(c.Affiliations, " "))
		if strings.Contains(affs, strings.ToLower(affiliationKeyword)) {
			s += bonus
		}
	}
	return s
}
