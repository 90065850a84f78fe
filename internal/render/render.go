// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes a run's records as a Markdown evidence table or
// as an indented JSON payload.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/citecontext/pkg/types"
)

// Column headers for the evidence table. The enriched set adds the title
// summary column, used when any record carries an enrichment summary.
var (
	defaultHeaders = []string{
		"Cited paper", "Cited venue / year", "Citing paper", "Citing venue / year",
		"Earliest-publishing citing author", "Citation sentence",
	}
	enrichedHeaders = []string{
		"Cited paper", "Cited venue / year", "Citing paper", "Citing venue / year",
		"Earliest-publishing citing author", "Title summary", "Citation sentence",
	}
)

// WriteJSON writes the payload as indented JSON.
func WriteJSON(out *types.RunOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteMarkdown writes the records as a Markdown table, sorted by cited
// then citing citation count descending, titles as a stable tie-break.
func WriteMarkdown(records []types.OutputRecord, cfg types.RenderConfig, w io.Writer) error {
	headers := defaultHeaders
	if hasEnrichment(records) {
		headers = enrichedHeaders
	}

	sorted := append([]types.OutputRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.CitedPaper.CitationCount != b.CitedPaper.CitationCount {
			return a.CitedPaper.CitationCount > b.CitedPaper.CitationCount
		}
		if a.CitingPaper.CitationCount != b.CitingPaper.CitationCount {
			return a.CitingPaper.CitationCount > b.CitingPaper.CitationCount
		}
		at, bt := strings.ToLower(a.CitedPaper.Title), strings.ToLower(b.CitedPaper.Title)
		if at != bt {
			return at < bt
		}
		return strings.ToLower(a.CitingPaper.Title) < strings.ToLower(b.CitingPaper.Title)
	})

	var rows [][]string
	for _, r := range sorted {
		row := []string{
			link(r.CitedPaper.Title, r.CitedPaper.URL),
			venueYear(r.CitedPaper.Venue, r.CitedPaper.Year),
			link(r.CitingPaper.Title, r.CitingPaper.URL),
			venueYear(r.CitingPaper.Venue, r.CitingPaper.Year),
			earliestCell(r.CitingEarliestAuthor, r.CitingFirstAuthor, r.CitingLastAuthor),
		}
		if len(headers) == len(enrichedHeaders) {
			row = append(row, r.CitingEarliestAuthorTitleSum)
		}
		row = append(row, pickContext(r.CitationContexts, cfg.MaxContextChars))
		rows = append(rows, row)
	}

	return writeTable(headers, rows, w)
}

func hasEnrichment(records []types.OutputRecord) bool {
	for _, r := range records {
		if strings.TrimSpace(r.CitingEarliestAuthorTitleSum) != "" {
			return true
		}
	}
	return false
}

// escapeCell makes a value safe inside a Markdown table cell: newlines
// become <br>, pipes are escaped.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.TrimSpace(s)
}

func writeTable(headers []string, rows [][]string, w io.Writer) error {
	var b strings.Builder

	b.WriteString("| ")
	for i, h := range headers {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(escapeCell(h))
	}
	b.WriteString(" |\n| ")
	b.WriteString(strings.Repeat("--- | ", len(headers)-1))
	b.WriteString("--- |\n")

	for _, row := range rows {
		b.WriteString("| ")
		for i := 0; i < len(headers); i++ {
			if i > 0 {
				b.WriteString(" | ")
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(escapeCell(cell))
		}
		b.WriteString(" |\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// link renders [title](url), or the bare title when no URL is known.
func link(title, url string) string {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" {
		return ""
	}
	if url == "" {
		return title
	}
	return fmt.Sprintf("[%s](%s)", title, url)
}

func venueYear(venue string, year *int) string {
	v := strings.TrimSpace(venue)
	y := ""
	if year != nil {
		y = fmt.Sprintf("%d", *year)
	}
	if v != "" && y != "" {
		return v + " " + y
	}
	if v != "" {
		return v
	}
	return y
}

// earliestCell renders "Name (year)" for the earliest author, falling
// back to "first / last" positions in the positional output mode.
func earliestCell(earliest *types.Author, first, last string) string {
	if earliest != nil {
		name := strings.TrimSpace(earliest.Name)
		if name != "" && earliest.EarliestPublicationYear != nil {
			return fmt.Sprintf("%s (%d)", name, *earliest.EarliestPublicationYear)
		}
		return name
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	switch {
	case first != "" && last != "" && first != last:
		return first + " / " + last
	case first != "":
		return first
	default:
		return last
	}
}

// pickContext returns the first non-blank context sentence, truncated to
// maxChars with a trailing ellipsis.
func pickContext(contexts []string, maxChars int) string {
	var first string
	for _, c := range contexts {
		if strings.TrimSpace(c) != "" {
			first = strings.TrimSpace(c)
			break
		}
	}
	if maxChars > 0 {
		runes := []rune(first)
		if len(runes) > maxChars {
			first = strings.TrimRight(string(runes[:maxChars-1]), " ") + "…"
		}
	}
	return first
}
