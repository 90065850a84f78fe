// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citecontext/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func sampleOutput() *types.RunOutput {
	return &types.RunOutput{
		Query: types.RunQuery{AuthorName: "Target Author", AuthorID: "t1", MaxTargetPapers: 20},
		Records: []types.OutputRecord{
			{
				CitedAuthor: types.Author{AuthorID: "t1", Name: "Target Author"},
				CitedPaper:  types.PaperRef{PaperID: "p1", Title: "Foundations", CitationCount: 900},
				CitingPaper: types.PaperRef{PaperID: "c1", Title: "Building on Foundations", CitationCount: 55, Year: intPtr(2022)},
				CitingEarliestAuthor: &types.Author{
					AuthorID: "x1", Name: "Bob", EarliestPublicationYear: intPtr(1999),
				},
				CitationContexts: []string{"We extend the sparse attention method of [12]."},
			},
			{
				CitedAuthor:      types.Author{AuthorID: "t1", Name: "Target Author"},
				CitedPaper:       types.PaperRef{PaperID: "p2", Title: "Follow-up", CitationCount: 100},
				CitingPaper:      types.PaperRef{PaperID: "c2", Title: "Unrelated Direction", CitationCount: 7},
				CitationContexts: []string{"A dense retrieval baseline was used."},
			},
		},
	}
}

func TestIngestAndQuery(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer

	runID, err := s.IngestRun(context.Background(), sampleOutput(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}
	if !strings.Contains(buf.String(), "2 records") {
		t.Errorf("status = %q, want record count", buf.String())
	}

	hits, err := s.Query(context.Background(), "sparse", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].RunID != runID {
		t.Errorf("hit run id = %q, want %q", hits[0].RunID, runID)
	}
	if hits[0].Record.CitingPaper.PaperID != "c1" {
		t.Errorf("hit citing paper = %q, want c1", hits[0].Record.CitingPaper.PaperID)
	}
	if hits[0].Record.CitingEarliestAuthor == nil || hits[0].Record.CitingEarliestAuthor.Name != "Bob" {
		t.Error("stored record should round-trip the earliest author")
	}
}

func TestQueryOrdersByCitingCitationCount(t *testing.T) {
	s := testStore(t)

	out := sampleOutput()
	// Make both records match the same term with distinct citing counts.
	out.Records[0].CitationContexts = []string{"attention mechanism variant"}
	out.Records[1].CitationContexts = []string{"attention ablation study"}
	out.Records[0].CitingPaper.CitationCount = 5
	out.Records[1].CitingPaper.CitationCount = 50

	if _, err := s.IngestRun(context.Background(), out, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Query(context.Background(), "attention", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Record.CitingPaper.CitationCount != 50 {
		t.Errorf("hits[0] citing count = %d, want 50", hits[0].Record.CitingPaper.CitationCount)
	}
}

func TestQueryNoMatches(t *testing.T) {
	s := testStore(t)
	if _, err := s.IngestRun(context.Background(), sampleOutput(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Query(context.Background(), "nonexistent", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("len(hits) = %d, want 0", len(hits))
	}
}

func TestQueryLimit(t *testing.T) {
	s := testStore(t)

	out := sampleOutput()
	out.Records[0].CitationContexts = []string{"shared keyword"}
	out.Records[1].CitationContexts = []string{"shared keyword"}
	if _, err := s.IngestRun(context.Background(), out, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Query(context.Background(), "shared", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("len(hits) = %d, want 1", len(hits))
	}
}

func TestRunsListsIngestedRuns(t *testing.T) {
	s := testStore(t)

	id1, err := s.IngestRun(context.Background(), sampleOutput(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.IngestRun(context.Background(), sampleOutput(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.Runs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}

	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[id1] || !ids[id2] {
		t.Errorf("runs = %v, want both ingested ids", ids)
	}
	for _, r := range runs {
		if r.Records != 2 {
			t.Errorf("run %s records = %d, want 2", r.ID, r.Records)
		}
		if r.AuthorName != "Target Author" {
			t.Errorf("run %s author = %q", r.ID, r.AuthorName)
		}
	}
}

func TestRunsEmptyStore(t *testing.T) {
	s := testStore(t)
	runs, err := s.Runs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	runID, err := s.IngestRun(context.Background(), sampleOutput(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportYAML(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	var export Export
	if err := yaml.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatal(err)
	}
	if len(export.Runs) != 1 {
		t.Fatalf("len(export.Runs) = %d, want 1", len(export.Runs))
	}
	if export.Runs[0].ID != runID {
		t.Errorf("export run id = %q, want %q", export.Runs[0].ID, runID)
	}
	if len(export.Runs[0].Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(export.Runs[0].Items))
	}
	if export.Runs[0].Items[0].CitedPaper.Title != "Foundations" {
		t.Errorf("items[0] cited title = %q", export.Runs[0].Items[0].CitedPaper.Title)
	}
}

func TestStoreReopenPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(types.StoreConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.IngestRun(context.Background(), sampleOutput(), &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(types.StoreConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	runs, err := reopened.Runs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("len(runs) after reopen = %d, want 1", len(runs))
	}
}
