// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one citation-evidence run: resolve the
// target author, rank their papers, scan each paper's citations through
// the bounded top-K selector, and assemble output records.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/citecontext/internal/progress"
	"github.com/pdiddy/citecontext/pkg/types"
)

// Client is the API surface the pipeline needs. *s2.Client implements it.
type Client interface {
	ResolveAuthor(ctx context.Context, name, affiliationKeyword string, strict bool) (types.AuthorCandidate, error)
	AuthorPapers(ctx context.Context, authorID string) ([]types.Paper, error)
	ForEachCitation(ctx context.Context, paperID string, maxItems int, fn func(types.Citation) bool) error
	EarliestPublicationYear(ctx context.Context, authorID string, minYear, maxYear int) (*int, error)
}

// Run executes the full pipeline and returns the output payload. Fatal
// errors abort the run; there is no partial-output mode. Status lines go
// to w, progress to rep.
func Run(ctx context.Context, client Client, cfg types.RunConfig, rep progress.Reporter, w io.Writer) (*types.RunOutput, error) {
	if cfg.AuthorID == "" && cfg.AuthorName == "" {
		return nil, fmt.Errorf("provide an author id or an author name")
	}

	authorID := cfg.AuthorID
	citedName := cfg.AuthorName
	if authorID == "" {
		chosen, err := client.ResolveAuthor(ctx, cfg.AuthorName, cfg.AffiliationKeyword, cfg.StrictDisambiguation)
		if err != nil {
			return nil, err
		}
		authorID = chosen.AuthorID
		if chosen.Name != "" {
			citedName = chosen.Name
		}
		fmt.Fprintf(w, "resolved author: %s (authorId=%s)\n", citedName, authorID)
	}
	if citedName == "" {
		citedName = "Unknown"
	}

	papers, err := client.AuthorPapers(ctx, authorID)
	if err != nil {
		return nil, err
	}
	targets := topPapersByCitationCount(papers, cfg.MaxTargetPapers)
	if len(targets) == 0 {
		return nil, fmt.Errorf("no papers found for authorId=%s", authorID)
	}

	citedAuthor := types.Author{AuthorID: authorID, Name: citedName}
	earliestMemo := make(map[string]*int)

	rep.Start("papers", len(targets))
	defer rep.Finish()

	var records []types.OutputRecord
	for _, cited := range targets {
		if cited.PaperID == "" {
			rep.Advance(1)
			continue
		}

		selector := NewSelector(cfg.TopCitationsPerPaper, cfg.InfluentialOnly, cfg.RequireContext)
		err := client.ForEachCitation(ctx, cited.PaperID, cfg.ScanCitationsPerPaper, func(c types.Citation) bool {
			selector.Offer(c)
			return true
		})
		if err != nil {
			return nil, err
		}

		for _, citation := range selector.Top() {
			record, err := assembleRecord(ctx, client, citedAuthor, cited, citation, cfg, earliestMemo)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
			if cfg.MaxRecords > 0 && len(records) >= cfg.MaxRecords {
				break
			}
		}

		rep.Advance(1)
		if cfg.MaxRecords > 0 && len(records) >= cfg.MaxRecords {
			break
		}
	}

	return &types.RunOutput{
		Query: types.RunQuery{
			AuthorName:            cfg.AuthorName,
			AuthorID:              cfg.AuthorID,
			MaxTargetPapers:       cfg.MaxTargetPapers,
			ScanCitationsPerPaper: cfg.ScanCitationsPerPaper,
			TopCitationsPerPaper:  cfg.TopCitationsPerPaper,
			InfluentialOnly:       cfg.InfluentialOnly,
			RequireContext:        cfg.RequireContext,
			MaxRecords:            cfg.MaxRecords,
		},
		Records: records,
	}, nil
}

// assembleRecord builds one output record for a retained citation.
func assembleRecord(ctx context.Context, resolver YearResolver, citedAuthor types.Author, cited types.Paper, citation types.Citation, cfg types.RunConfig, memo map[string]*int) (types.OutputRecord, error) {
	citing := citation.CitingPaper

	record := types.OutputRecord{
		CitedAuthor:      citedAuthor,
		CitedPaper:       cited.Ref(),
		CitingPaper:      citing.Ref(),
		IsInfluential:    citation.IsInfluential,
		CitationContexts: citation.Contexts,
	}
	if record.CitationContexts == nil {
		record.CitationContexts = []string{}
	}

	if cfg.EarliestAuthor {
		earliest, err := pickEarliestPublishingAuthor(ctx, resolver, citing.Authors, memo, cfg.CutoffYear)
		if err != nil {
			return types.OutputRecord{}, err
		}
		record.CitingEarliestAuthor = earliest
	} else {
		record.CitingFirstAuthor, record.CitingLastAuthor = firstLastAuthor(citing.Authors)
	}
	return record, nil
}

// firstLastAuthor returns the names at the first and last author
// positions, empty when the author list is empty.
func firstLastAuthor(authors []types.Author) (first, last string) {
	if len(authors) == 0 {
		return "", ""
	}
	return authors[0].Name, authors[len(authors)-1].Name
}

// topPapersByCitationCount ranks papers by (citationCount desc, year
// desc) and returns the top k.
func topPapersByCitationCount(papers []types.Paper, k int) []types.Paper {
	ranked := append([]types.Paper(nil), papers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CitationCount != ranked[j].CitationCount {
			return ranked[i].CitationCount > ranked[j].CitationCount
		}
		return ranked[i].YearOrZero() > ranked[j].YearOrZero()
	})
	if k < 0 {
		k = 0
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
