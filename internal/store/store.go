// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists run outputs in a SQLite database with a
// full-text index over citation contexts, so past evidence runs stay
// queryable without re-hitting the API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citecontext/pkg/types"
)

const dbFile = "citecontext.db"

// Store manages the record database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the database at cfg.Dir/citecontext.db and
// bootstraps the schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			author_id TEXT,
			author_name TEXT,
			query TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			cited_paper_id TEXT,
			cited_title TEXT,
			citing_paper_id TEXT,
			citing_title TEXT,
			citing_citation_count INTEGER,
			earliest_author TEXT,
			contexts TEXT,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_cited ON records(cited_paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(contexts, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, contexts) VALUES (new.rowid, new.contexts);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, contexts) VALUES('delete', old.rowid, old.contexts);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IngestRun stores all records of one run under a fresh run id.
func (s *Store) IngestRun(ctx context.Context, out *types.RunOutput, w io.Writer) (string, error) {
	runID := uuid.NewString()

	queryJSON, err := json.Marshal(out.Query)
	if err != nil {
		return "", fmt.Errorf("marshaling query: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, author_id, author_name, query) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), out.Query.AuthorID, out.Query.AuthorName, string(queryJSON),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, cited_paper_id, cited_title, citing_paper_id, citing_title,
			citing_citation_count, earliest_author, contexts, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range out.Records {
		recordJSON, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("marshaling record: %w", err)
		}
		contextsJSON, _ := json.Marshal(r.CitationContexts)

		earliest := ""
		if r.CitingEarliestAuthor != nil {
			earliest = r.CitingEarliestAuthor.Name
		}

		_, err = stmt.ExecContext(ctx,
			runID, r.CitedPaper.PaperID, r.CitedPaper.Title,
			r.CitingPaper.PaperID, r.CitingPaper.Title,
			r.CitingPaper.CitationCount, earliest,
			string(contextsJSON), string(recordJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting record for %s: %w", r.CitingPaper.PaperID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}

	fmt.Fprintf(w, "stored run %s (%d records)\n", runID, len(out.Records))
	return runID, nil
}

// Hit is one full-text query result.
type Hit struct {
	RunID  string             `json:"run_id" yaml:"run_id"`
	Record types.OutputRecord `json:"record" yaml:"record"`
}

// Query searches citation contexts with FTS5 and returns matching
// records, most-cited citing papers first. limit of 0 uses the
// configured default.
func (s *Store) Query(ctx context.Context, term string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.run_id, r.record
		 FROM records r
		 JOIN records_fts f ON f.rowid = r.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY r.citing_citation_count DESC
		 LIMIT ?`,
		term, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var runID, recordJSON string
		if err := rows.Scan(&runID, &recordJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var record types.OutputRecord
		if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
			return nil, fmt.Errorf("parsing stored record: %w", err)
		}
		hits = append(hits, Hit{RunID: runID, Record: record})
	}
	return hits, rows.Err()
}

// RunSummary describes one stored run.
type RunSummary struct {
	ID         string `json:"id" yaml:"id"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	AuthorID   string `json:"author_id,omitempty" yaml:"author_id,omitempty"`
	AuthorName string `json:"author_name,omitempty" yaml:"author_name,omitempty"`
	Records    int    `json:"records" yaml:"records"`
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT runs.id, runs.created_at, runs.author_id, runs.author_name, count(records.rowid)
		 FROM runs LEFT JOIN records ON records.run_id = runs.id
		 GROUP BY runs.id
		 ORDER BY runs.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.AuthorID, &r.AuthorName, &r.Records); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
