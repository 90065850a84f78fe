// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich finds a person's notable academic and professional
// titles: web search, visit the top pages, summarize with an LLM. The
// pipeline treats it purely as a name -> summary mapping with its own
// cache; nothing here touches the API response cache.
package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/citecontext/internal/cache"
	"github.com/pdiddy/citecontext/internal/progress"
	"github.com/pdiddy/citecontext/pkg/types"
)

// cacheVersion is baked into cache keys so prompt changes invalidate
// previously cached summaries.
const cacheVersion = "v5"

// summaryCacheTTL expires cached summaries after a week.
const summaryCacheTTL = 7 * 24 * time.Hour

// SearchResult is one web search hit.
type SearchResult struct {
	Title string
	URL   string
	Body  string
}

// Searcher queries a web search engine.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// PageFetcher retrieves a page and extracts readable text.
type PageFetcher interface {
	FetchText(ctx context.Context, url string, maxChars int) (string, error)
}

// ChatCompleter sends one chat completion and returns the assistant text.
type ChatCompleter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = `You are an expert at identifying notable academic and professional titles.

The user will provide the full text extracted from several web pages about a person.
Write a SHORT summary (1-2 sentences, ideally under 120 chars) listing ONLY their most impressive / noteworthy titles.

Include things like:
- Institutional affiliation & academic rank  (e.g. "Professor at Stanford")
- Lab / centre leadership  (e.g. "Director of XXX Lab")
- Society fellowships  (e.g. "ACM Fellow, IEEE Fellow")
- Academy memberships  (e.g. "Member of Chinese Academy of Sciences")
- Major awards  (e.g. "Turing Award laureate")

Rules:
- Output ONLY the summary text - no JSON, no markdown, no preamble.
- Be concise: drop generic info, keep only the impressive stuff.
- If nothing notable is found, output exactly: unknown
- Use English.
`

// Agent runs the search -> visit -> summarize flow with a private cache.
type Agent struct {
	cfg    types.EnrichConfig
	search Searcher
	fetch  PageFetcher
	llm    ChatCompleter
	cache  *cache.Disk
}

// NewAgent wires an agent from the given collaborators. Missing LLM
// configuration is reported as a distinct, actionable error so callers
// can tell a setup problem from a pipeline failure.
func NewAgent(cfg types.EnrichConfig, search Searcher, fetch PageFetcher, llm ChatCompleter) (*Agent, error) {
	if cfg.APIBase == "" || cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("title enrichment needs an LLM endpoint: set api_base, api_key, and model " +
			"(config enrich section, or .secrets/llm-api-base and .secrets/llm-api-key)")
	}
	if cfg.NumSearchResults <= 0 {
		cfg.NumSearchResults = 5
	}
	if cfg.MaxPageChars <= 0 {
		cfg.MaxPageChars = 3000
	}

	diskCache, err := cache.NewDisk(cfg.CacheDir, summaryCacheTTL)
	if err != nil {
		return nil, err
	}
	return &Agent{cfg: cfg, search: search, fetch: fetch, llm: llm, cache: diskCache}, nil
}

func summaryCacheKey(name string) string {
	seed := fmt.Sprintf("titlesearch:%s:%s", cacheVersion, strings.ToLower(strings.TrimSpace(name)))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(seed)))
}

// TitleSummary returns a short summary of the person's notable titles,
// or "unknown" when nothing notable is found.
func (a *Agent) TitleSummary(ctx context.Context, name string) (string, error) {
	key := summaryCacheKey(name)
	if cached, ok := a.cache.Get(key); ok {
		var summary string
		if err := json.Unmarshal(cached, &summary); err == nil {
			return summary, nil
		}
	}

	pages, err := a.searchAndRead(ctx, name)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		a.storeSummary(key, "unknown")
		return "unknown", nil
	}

	summary, err := a.llm.Chat(ctx, systemPrompt, buildUserPrompt(name, pages))
	if err != nil {
		return "", fmt.Errorf("summarizing titles for %q: %w", name, err)
	}
	summary = strings.TrimSpace(strings.Trim(strings.TrimSpace(summary), `"`))
	if summary == "" {
		summary = "unknown"
	}

	a.storeSummary(key, summary)
	return summary, nil
}

// Summaries resolves each distinct non-blank name once, preserving first
// occurrence order for progress reporting.
func (a *Agent) Summaries(ctx context.Context, names []string, rep progress.Reporter) (map[string]string, error) {
	var unique []string
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		unique = append(unique, n)
	}

	rep.Start("title search", len(unique))
	defer rep.Finish()

	results := make(map[string]string, len(unique))
	for _, name := range unique {
		summary, err := a.TitleSummary(ctx, name)
		if err != nil {
			return nil, err
		}
		results[name] = summary
		rep.Advance(1)
	}
	return results, nil
}

// storeSummary caches a summary; cache write failures are non-fatal for
// enrichment, the summary is simply recomputed next time.
func (a *Agent) storeSummary(key, summary string) {
	if data, err := json.Marshal(summary); err == nil {
		_ = a.cache.Set(key, data)
	}
}

type page struct {
	url  string
	text string
}

// searchAndRead runs both query templates, visits each distinct hit, and
// returns the pages that yielded text. Failed fetches are skipped, not
// fatal; evidence gathering is best-effort.
func (a *Agent) searchAndRead(ctx context.Context, name string) ([]page, error) {
	queries := []string{
		fmt.Sprintf("%q professor university", name),
		fmt.Sprintf("%q fellow OR homepage OR \"google scholar\"", name),
	}

	seen := make(map[string]bool)
	var pages []page
	for _, q := range queries {
		hits, err := a.search.Search(ctx, q, a.cfg.NumSearchResults)
		if err != nil {
			// A failed search engine query is survivable; the other
			// template may still produce pages.
			continue
		}
		for _, h := range hits {
			if h.URL == "" || seen[h.URL] {
				continue
			}
			seen[h.URL] = true
			text, err := a.fetch.FetchText(ctx, h.URL, a.cfg.MaxPageChars)
			if err != nil || text == "" {
				continue
			}
			pages = append(pages, page{url: h.URL, text: text})
		}
	}
	return pages, nil
}

func buildUserPrompt(name string, pages []page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the notable titles for: %s\n\n", name)
	for i, p := range pages {
		fmt.Fprintf(&b, "--- Page %d: %s ---\n%s\n\n", i+1, p.url, p.text)
	}
	return b.String()
}

// EnrichRecords fills CitingEarliestAuthorTitleSum on every record whose
// earliest author resolved a summary. Records are updated in place.
func EnrichRecords(ctx context.Context, agent *Agent, records []types.OutputRecord, rep progress.Reporter) error {
	var names []string
	for _, r := range records {
		if r.CitingEarliestAuthor != nil {
			names = append(names, r.CitingEarliestAuthor.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	summaries, err := agent.Summaries(ctx, names, rep)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].CitingEarliestAuthor == nil {
			continue
		}
		name := strings.TrimSpace(records[i].CitingEarliestAuthor.Name)
		if summary, ok := summaries[name]; ok {
			records[i].CitingEarliestAuthorTitleSum = summary
		}
	}
	return nil
}
