// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citecontext/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the Semantic Scholar API client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar API key. Absent keys are
	// permitted; the upstream applies lower rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CacheDir is the directory for the on-disk response cache.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// CacheTTL is the response cache time-to-live. Zero means entries
	// never expire on age.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// MinInterval is the minimum delay between network requests issued
	// by one client instance (default 250ms).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// MaxRetries is the number of retry attempts after the first try
	// on 429/5xx/network failure (default 6).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// AmbiguityMargin controls strict author disambiguation: the run
	// fails when the runner-up scores at least winner*AmbiguityMargin.
	// Heuristic constant from field use; default 0.98.
	AmbiguityMargin float64 `json:"ambiguity_margin" yaml:"ambiguity_margin"`

	// AffiliationBonus is the score bonus for an affiliation-keyword
	// match during author disambiguation. Heuristic; default 1.0.
	AffiliationBonus float64 `json:"affiliation_bonus" yaml:"affiliation_bonus"`
}

// RunConfig holds settings for one citation-evidence run.
type RunConfig struct {
	// AuthorName is the target author's name; resolved via search when
	// AuthorID is empty.
	AuthorName string `json:"author_name,omitempty" yaml:"author_name,omitempty"`

	// AuthorID is the Semantic Scholar authorId; bypasses name search.
	AuthorID string `json:"author_id,omitempty" yaml:"author_id,omitempty"`

	// AffiliationKeyword biases author disambiguation toward candidates
	// whose affiliations contain it (case-insensitive).
	AffiliationKeyword string `json:"affiliation_keyword,omitempty" yaml:"affiliation_keyword,omitempty"`

	// StrictDisambiguation aborts instead of guessing when the author
	// search is ambiguous.
	StrictDisambiguation bool `json:"strict_disambiguation" yaml:"strict_disambiguation"`

	// MaxTargetPapers is the number of the author's top papers to scan
	// (ranked by citationCount desc, year desc; default 20).
	MaxTargetPapers int `json:"max_target_papers" yaml:"max_target_papers"`

	// ScanCitationsPerPaper caps how many citations are scanned per
	// target paper before selection (default 1000).
	ScanCitationsPerPaper int `json:"scan_citations_per_paper" yaml:"scan_citations_per_paper"`

	// TopCitationsPerPaper is the top-N citing papers kept per target
	// paper, by citing-paper citation count (default 3).
	TopCitationsPerPaper int `json:"top_citations_per_paper" yaml:"top_citations_per_paper"`

	// MaxRecords caps the total records emitted across all papers
	// (default 60).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// InfluentialOnly drops citations explicitly flagged not influential.
	// An unknown flag is kept.
	InfluentialOnly bool `json:"influential_only" yaml:"influential_only"`

	// RequireContext drops citations without context sentences.
	RequireContext bool `json:"require_context" yaml:"require_context"`

	// EarliestAuthor selects the earliest-publishing co-author per citing
	// paper instead of first/last author positions.
	EarliestAuthor bool `json:"earliest_author" yaml:"earliest_author"`

	// CutoffYear bounds the earliest-year search window; 0 means the
	// current year.
	CutoffYear int `json:"cutoff_year,omitempty" yaml:"cutoff_year,omitempty"`
}

// RenderConfig holds settings for the Markdown rendering of records.
type RenderConfig struct {
	// MaxContextChars truncates the context cell in Markdown (default 280).
	MaxContextChars int `json:"max_context_chars" yaml:"max_context_chars"`
}

// EnrichConfig holds settings for the title enrichment agent.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBase is the OpenAI-compatible chat completions base URL.
	APIBase string `json:"api_base" yaml:"api_base"`

	// APIKey authenticates against the chat completions API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the chat model identifier.
	Model string `json:"model" yaml:"model"`

	// CacheDir is the enrichment agent's own cache directory, independent
	// of the API response cache.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// NumSearchResults is the number of search hits visited per query
	// (default 5).
	NumSearchResults int `json:"num_search_results" yaml:"num_search_results"`

	// MaxPageChars caps the extracted text per visited page (default 3000).
	MaxPageChars int `json:"max_page_chars" yaml:"max_page_chars"`
}

// StoreConfig holds settings for the SQLite record store.
type StoreConfig struct {
	// Dir is the directory containing the store database.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
