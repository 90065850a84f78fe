// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdiddy/citecontext/pkg/types"
)

// pageLimit is the offset/limit page size for paginated endpoints.
const pageLimit = 100

// Safety ceilings against runaway pagination. Not user-facing limits:
// a well-formed result set terminates on a short page long before these.
const (
	maxPaperOffset    = 10_000
	maxCitationOffset = 50_000
)

const paperFields = "paperId,title,year,venue,externalIds,citationCount,influentialCitationCount,authors,url"

const citationFields = "citingPaper.paperId,citingPaper.title,citingPaper.year," +
	"citingPaper.venue,citingPaper.authors,citingPaper.externalIds,citingPaper.url," +
	"citingPaper.citationCount,isInfluential,contexts"

type paperPage struct {
	Data []types.Paper `json:"data"`
}

type citationPage struct {
	Data []types.Citation `json:"data"`
}

// AuthorPapers materializes the author's full paper list, walking
// offset/limit pages of pageLimit until a short page or the safety
// ceiling. Eager: the whole list is needed to rank target papers.
func (c *Client) AuthorPapers(ctx context.Context, authorID string) ([]types.Paper, error) {
	var papers []types.Paper
	path := "/author/" + url.PathEscape(authorID) + "/papers"

	for offset := 0; ; offset += pageLimit {
		params := url.Values{
			"limit":  {strconv.Itoa(pageLimit)},
			"offset": {strconv.Itoa(offset)},
			"fields": {paperFields},
		}
		raw, err := c.fetchJSON(ctx, path, params)
		if err != nil {
			return nil, err
		}

		var page paperPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("parsing author papers page: %w", err)
		}

		papers = append(papers, page.Data...)
		if len(page.Data) < pageLimit {
			break
		}
		if offset+pageLimit > maxPaperOffset {
			break
		}
	}
	return papers, nil
}

// ForEachCitation streams at most maxItems citations of paperID to fn,
// fetching pages lazily so a paper with millions of citations is only
// probed as far as needed. fn returning false stops the walk early.
func (c *Client) ForEachCitation(ctx context.Context, paperID string, maxItems int, fn func(types.Citation) bool) error {
	if maxItems <= 0 {
		return nil
	}
	path := "/paper/" + url.PathEscape(paperID) + "/citations"

	seen := 0
	for offset := 0; seen < maxItems; offset += pageLimit {
		requestLimit := pageLimit
		if remaining := maxItems - seen; remaining < requestLimit {
			requestLimit = remaining
		}

		params := url.Values{
			"limit":  {strconv.Itoa(requestLimit)},
			"offset": {strconv.Itoa(offset)},
			"fields": {citationFields},
		}
		raw, err := c.fetchJSON(ctx, path, params)
		if err != nil {
			return err
		}

		var page citationPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("parsing citations page: %w", err)
		}
		if len(page.Data) == 0 {
			break
		}

		for _, citation := range page.Data {
			if !fn(citation) {
				return nil
			}
			seen++
			if seen >= maxItems {
				return nil
			}
		}

		if len(page.Data) < requestLimit {
			break
		}
		if offset+pageLimit > maxCitationOffset {
			break
		}
	}
	return nil
}
