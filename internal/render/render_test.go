// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/citecontext/pkg/types"
)

func intPtr(v int) *int { return &v }

// --- Cell helpers ---

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"newline", "line one\nline two", "line one<br>line two"},
		{"crlf", "a\r\nb", "a<br>b"},
		{"pipe", "a | b", "a \\| b"},
		{"surrounding space", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeCell(tt.in); got != tt.want {
				t.Errorf("escapeCell(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		name  string
		title string
		url   string
		want  string
	}{
		{"both", "Attention Is All You Need", "https://s2.org/p1", "[Attention Is All You Need](https://s2.org/p1)"},
		{"no url", "Bare Title", "", "Bare Title"},
		{"no title", "", "https://s2.org/p1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := link(tt.title, tt.url); got != tt.want {
				t.Errorf("link() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVenueYear(t *testing.T) {
	tests := []struct {
		name  string
		venue string
		year  *int
		want  string
	}{
		{"both", "NeurIPS", intPtr(2017), "NeurIPS 2017"},
		{"venue only", "NeurIPS", nil, "NeurIPS"},
		{"year only", "", intPtr(2017), "2017"},
		{"neither", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := venueYear(tt.venue, tt.year); got != tt.want {
				t.Errorf("venueYear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEarliestCell(t *testing.T) {
	tests := []struct {
		name     string
		earliest *types.Author
		first    string
		last     string
		want     string
	}{
		{"name and year", &types.Author{Name: "Bob", EarliestPublicationYear: intPtr(1999)}, "", "", "Bob (1999)"},
		{"name without year", &types.Author{Name: "Bob"}, "", "", "Bob"},
		{"positional pair", nil, "First", "Last", "First / Last"},
		{"positional same person", nil, "Solo", "Solo", "Solo"},
		{"positional first only", nil, "First", "", "First"},
		{"nothing", nil, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := earliestCell(tt.earliest, tt.first, tt.last); got != tt.want {
				t.Errorf("earliestCell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickContext(t *testing.T) {
	tests := []struct {
		name     string
		contexts []string
		maxChars int
		want     string
	}{
		{"first non-blank", []string{"", "  ", "the actual sentence", "later"}, 100, "the actual sentence"},
		{"none", nil, 100, ""},
		{"truncated", []string{"abcdefghij"}, 5, "abcd…"},
		{"exact fit", []string{"abcde"}, 5, "abcde"},
		{"no limit", []string{strings.Repeat("x", 500)}, 0, strings.Repeat("x", 500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickContext(tt.contexts, tt.maxChars); got != tt.want {
				t.Errorf("pickContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickContextMultibyteTruncation(t *testing.T) {
	// Truncation counts runes, not bytes.
	got := pickContext([]string{"日本語のテキストです"}, 5)
	if got != "日本語の…" {
		t.Errorf("pickContext = %q, want %q", got, "日本語の…")
	}
}

// --- Table rendering ---

func sampleRecord(citedCount, citingCount int, citedTitle, citingTitle string) types.OutputRecord {
	return types.OutputRecord{
		CitedAuthor: types.Author{AuthorID: "t", Name: "Target"},
		CitedPaper: types.PaperRef{
			PaperID: "cited-" + citedTitle, Title: citedTitle, Venue: "ICML",
			Year: intPtr(2019), CitationCount: citedCount, URL: "https://s2.org/" + citedTitle,
		},
		CitingPaper: types.PaperRef{
			PaperID: "citing-" + citingTitle, Title: citingTitle, Venue: "NeurIPS",
			Year: intPtr(2022), CitationCount: citingCount,
		},
		CitingEarliestAuthor: &types.Author{Name: "Bob", EarliestPublicationYear: intPtr(1999)},
		CitationContexts:     []string{"quoting " + citingTitle},
	}
}

func TestWriteMarkdownSortsByCitationCounts(t *testing.T) {
	records := []types.OutputRecord{
		sampleRecord(10, 5, "Low", "L1"),
		sampleRecord(90, 2, "High", "H1"),
		sampleRecord(90, 8, "High", "H2"),
	}

	var buf bytes.Buffer
	if err := WriteMarkdown(records, types.RenderConfig{MaxContextChars: 280}, &buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Header + separator + 3 rows.
	if len(lines) != 5 {
		t.Fatalf("line count = %d, want 5\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "H2") {
		t.Errorf("row 1 = %q, want the High/H2 record first", lines[2])
	}
	if !strings.Contains(lines[3], "H1") {
		t.Errorf("row 2 = %q, want High/H1", lines[3])
	}
	if !strings.Contains(lines[4], "L1") {
		t.Errorf("row 3 = %q, want Low/L1", lines[4])
	}
}

func TestWriteMarkdownDefaultHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown([]types.OutputRecord{sampleRecord(1, 1, "A", "B")}, types.RenderConfig{}, &buf); err != nil {
		t.Fatal(err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if strings.Contains(header, "Title summary") {
		t.Errorf("unenriched records must not get the summary column: %q", header)
	}
	for _, h := range []string{"Cited paper", "Citing paper", "Earliest-publishing citing author", "Citation sentence"} {
		if !strings.Contains(header, h) {
			t.Errorf("header missing %q: %q", h, header)
		}
	}
}

func TestWriteMarkdownEnrichedHeaders(t *testing.T) {
	r := sampleRecord(1, 1, "A", "B")
	r.CitingEarliestAuthorTitleSum = "Professor at Stanford, ACM Fellow"

	var buf bytes.Buffer
	if err := WriteMarkdown([]types.OutputRecord{r}, types.RenderConfig{}, &buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	header := strings.SplitN(out, "\n", 2)[0]
	if !strings.Contains(header, "Title summary") {
		t.Errorf("enriched records must add the summary column: %q", header)
	}
	if !strings.Contains(out, "Professor at Stanford") {
		t.Error("summary cell missing from the table body")
	}
}

func TestWriteMarkdownEscapesCells(t *testing.T) {
	r := sampleRecord(1, 1, "Title | with pipe", "B")
	r.CitationContexts = []string{"line one\nline two"}

	var buf bytes.Buffer
	if err := WriteMarkdown([]types.OutputRecord{r}, types.RenderConfig{}, &buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `Title \| with pipe`) {
		t.Errorf("pipe not escaped:\n%s", out)
	}
	if !strings.Contains(out, "line one<br>line two") {
		t.Errorf("newline not converted:\n%s", out)
	}
}

func TestWriteMarkdownEmptyRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(nil, types.RenderConfig{}, &buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("empty table should be header + separator, got %d lines", len(lines))
	}
}

// --- JSON rendering ---

func TestWriteJSONRoundTrip(t *testing.T) {
	out := &types.RunOutput{
		Query:   types.RunQuery{AuthorName: "Target", MaxTargetPapers: 20},
		Records: []types.OutputRecord{sampleRecord(3, 1, "A", "B")},
	}

	var buf bytes.Buffer
	if err := WriteJSON(out, &buf); err != nil {
		t.Fatal(err)
	}

	var back types.RunOutput
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Query.AuthorName != "Target" {
		t.Errorf("query author = %q", back.Query.AuthorName)
	}
	if len(back.Records) != 1 || back.Records[0].CitedPaper.Title != "A" {
		t.Errorf("records = %+v", back.Records)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output should be indented")
	}
}
