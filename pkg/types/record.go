// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citecontext pipeline.
// Paper, Author, and Citation mirror the Semantic Scholar Graph API shapes;
// OutputRecord is the unit emitted for downstream rendering.
package types

// Author is a paper author as returned by the API. Both fields may be
// absent upstream.
type Author struct {
	AuthorID string `json:"authorId,omitempty" yaml:"author_id,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`

	// EarliestPublicationYear is filled by the earliest-year resolver.
	// Nil means unknown: the author has no year-tagged work at or before
	// the cutoff, or no authorId to query by.
	EarliestPublicationYear *int `json:"earliest_publication_year,omitempty" yaml:"earliest_publication_year,omitempty"`
}

// Paper holds the metadata snapshot the API returns for one paper.
// Fields are carried verbatim; Year is a pointer so an upstream null
// round-trips as null rather than 0.
type Paper struct {
	PaperID       string            `json:"paperId" yaml:"paper_id"`
	Title         string            `json:"title" yaml:"title"`
	Venue         string            `json:"venue,omitempty" yaml:"venue,omitempty"`
	Year          *int              `json:"year" yaml:"year"`
	CitationCount int               `json:"citationCount" yaml:"citation_count"`
	ExternalIDs   map[string]any    `json:"externalIds,omitempty" yaml:"external_ids,omitempty"`
	URL           string            `json:"url,omitempty" yaml:"url,omitempty"`
	Authors       []Author          `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// YearOrZero returns the publication year, or 0 when the API reported none.
func (p Paper) YearOrZero() int {
	if p.Year == nil {
		return 0
	}
	return *p.Year
}

// Citation is one (cited paper, citing paper) edge. IsInfluential is a
// tri-state flag: nil means the API did not say.
type Citation struct {
	CitingPaper   Paper    `json:"citingPaper" yaml:"citing_paper"`
	IsInfluential *bool    `json:"isInfluential" yaml:"is_influential"`
	Contexts      []string `json:"contexts,omitempty" yaml:"contexts,omitempty"`
}

// AuthorCandidate is one result of an author-name search, with the fields
// the disambiguation score needs.
type AuthorCandidate struct {
	AuthorID      string   `json:"authorId" yaml:"author_id"`
	Name          string   `json:"name" yaml:"name"`
	Affiliations  []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
	PaperCount    int      `json:"paperCount" yaml:"paper_count"`
	CitationCount int      `json:"citationCount" yaml:"citation_count"`
	HIndex        int      `json:"hIndex" yaml:"h_index"`
}

// PaperRef is the snapshot of a paper embedded in an OutputRecord.
type PaperRef struct {
	PaperID       string         `json:"paperId" yaml:"paper_id"`
	Title         string         `json:"title" yaml:"title"`
	Venue         string         `json:"venue,omitempty" yaml:"venue,omitempty"`
	Year          *int           `json:"year" yaml:"year"`
	CitationCount int            `json:"citationCount" yaml:"citation_count"`
	ExternalIDs   map[string]any `json:"externalIds,omitempty" yaml:"external_ids,omitempty"`
	URL           string         `json:"url,omitempty" yaml:"url,omitempty"`
}

// Ref returns the embeddable snapshot of p.
func (p Paper) Ref() PaperRef {
	return PaperRef{
		PaperID:       p.PaperID,
		Title:         p.Title,
		Venue:         p.Venue,
		Year:          p.Year,
		CitationCount: p.CitationCount,
		ExternalIDs:   p.ExternalIDs,
		URL:           p.URL,
	}
}

// OutputRecord is one row of the final evidence table: who cites whom,
// with the exact sentences. Immutable once constructed.
type OutputRecord struct {
	CitedAuthor Author   `json:"cited_author" yaml:"cited_author"`
	CitedPaper  PaperRef `json:"cited_paper" yaml:"cited_paper"`
	CitingPaper PaperRef `json:"citing_paper" yaml:"citing_paper"`

	// CitingEarliestAuthor is the citing paper's co-author with the
	// earliest known publication year (earliest-author output mode).
	CitingEarliestAuthor *Author `json:"citing_earliest_author,omitempty" yaml:"citing_earliest_author,omitempty"`

	// First/last author positions (positional output mode).
	CitingFirstAuthor string `json:"citing_first_author,omitempty" yaml:"citing_first_author,omitempty"`
	CitingLastAuthor  string `json:"citing_last_author,omitempty" yaml:"citing_last_author,omitempty"`

	// CitingEarliestAuthorTitleSum is an optional enrichment summary of
	// the earliest author's notable titles, filled by the enrich step.
	CitingEarliestAuthorTitleSum string `json:"citing_earliest_author_title_sum,omitempty" yaml:"citing_earliest_author_title_sum,omitempty"`

	IsInfluential    *bool    `json:"isInfluential" yaml:"is_influential"`
	CitationContexts []string `json:"citation_contexts" yaml:"citation_contexts"`
}

// RunQuery echoes the parameters that produced a run, for reproducibility.
type RunQuery struct {
	AuthorName            string `json:"author_name,omitempty" yaml:"author_name,omitempty"`
	AuthorID              string `json:"author_id,omitempty" yaml:"author_id,omitempty"`
	MaxTargetPapers       int    `json:"max_target_papers" yaml:"max_target_papers"`
	ScanCitationsPerPaper int    `json:"scan_citations_per_paper" yaml:"scan_citations_per_paper"`
	TopCitationsPerPaper  int    `json:"top_citations_per_paper" yaml:"top_citations_per_paper"`
	InfluentialOnly       bool   `json:"influential_only" yaml:"influential_only"`
	RequireContext        bool   `json:"require_context" yaml:"require_context"`
	MaxRecords            int    `json:"max_records" yaml:"max_records"`
}

// RunOutput is the payload written to the output JSON file.
type RunOutput struct {
	Query   RunQuery       `json:"query" yaml:"query"`
	Records []OutputRecord `json:"records" yaml:"records"`
}
