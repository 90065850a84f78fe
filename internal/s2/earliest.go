// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// defaultMinYear is the lower bound of the earliest-year search window.
const defaultMinYear = 1800

// hasPaperUpToYear is the existence probe: does the author have at least
// one publication with year <= year? A size-1 query, so each probe costs
// one (cached, throttled) request.
func (c *Client) hasPaperUpToYear(ctx context.Context, authorID string, year int) (bool, error) {
	params := url.Values{
		"limit":                 {"1"},
		"offset":                {"0"},
		"fields":                {"year"},
		"publicationDateOrYear": {fmt.Sprintf(":%d", year)},
	}
	raw, err := c.fetchJSON(ctx, "/author/"+url.PathEscape(authorID)+"/papers", params)
	if err != nil {
		return false, err
	}

	var page paperPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return false, fmt.Errorf("parsing existence probe: %w", err)
	}
	return len(page.Data) > 0, nil
}

// EarliestPublicationYear returns the earliest calendar year in which the
// author has a publication, or nil when none exists at or before maxYear.
// minYear/maxYear of 0 default to 1800 and the current year.
//
// The search binary-searches the year axis with existence probes, so it
// costs O(log(maxYear-minYear)) requests instead of the author's full
// bibliography. Results are memoized per author for the client lifetime.
func (c *Client) EarliestPublicationYear(ctx context.Context, authorID string, minYear, maxYear int) (*int, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return nil, nil
	}

	if year, ok := c.earliestMem[authorID]; ok {
		return year, nil
	}

	if minYear == 0 {
		minYear = defaultMinYear
	}
	if maxYear == 0 {
		maxYear = time.Now().Year()
	}
	if minYear > maxYear {
		minYear, maxYear = maxYear, minYear
	}

	ok, err := c.hasPaperUpToYear(ctx, authorID, maxYear)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No year-tagged work at or before the cutoff. Memoize the
		// absence so co-occurring citations skip the probe.
		c.earliestMem[authorID] = nil
		return nil, nil
	}

	lo, hi := minYear, maxYear
	for lo < hi {
		mid := (lo + hi) / 2
		ok, err := c.hasPaperUpToYear(ctx, authorID, mid)
		if err != nil {
			return nil, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	year := lo
	c.earliestMem[authorID] = &year
	return &year, nil
}
