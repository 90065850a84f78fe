// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citecontext/pkg/types"
)

// Export is the YAML document written by ExportYAML.
type Export struct {
	Runs []ExportRun `yaml:"runs"`
}

// ExportRun is one run with its records.
type ExportRun struct {
	RunSummary `yaml:",inline"`
	Items      []types.OutputRecord `yaml:"records"`
}

// ExportYAML writes every stored run and its records as one YAML
// document, newest run first.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	runs, err := s.Runs(ctx)
	if err != nil {
		return err
	}

	export := Export{}
	for _, run := range runs {
		items, err := s.runRecords(ctx, run.ID)
		if err != nil {
			return err
		}
		export.Runs = append(export.Runs, ExportRun{RunSummary: run, Items: items})
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

func (s *Store) runRecords(ctx context.Context, runID string) ([]types.OutputRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM records WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []types.OutputRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var record types.OutputRecord
		if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
			return nil, fmt.Errorf("parsing stored record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
