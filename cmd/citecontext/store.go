// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citecontext/internal/store"
	"github.com/pdiddy/citecontext/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Index and query run outputs in a local SQLite database",
}

var storeIngestCmd = &cobra.Command{
	Use:   "ingest [run.json]",
	Short: "Store a run's output JSON in the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreIngest,
}

var storeQueryCmd = &cobra.Command{
	Use:   "query [term]",
	Short: "Full-text search stored citation contexts",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreQuery,
}

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE:  runStoreRuns,
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored runs as YAML to stdout",
	RunE:  runStoreExport,
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "store", "directory containing the database")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (default 20)")

	storeCmd.AddCommand(storeIngestCmd, storeQueryCmd, storeRunsCmd, storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dir, _ := cmd.Flags().GetString("store-dir")
	return store.NewStore(types.StoreConfig{Dir: dir})
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var out types.RunOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.IngestRun(cmd.Context(), &out, os.Stdout)
	return err
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	hits, err := s.Query(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(hits)
}

func runStoreRuns(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %-20s  %d records\n", r.ID, r.CreatedAt, r.AuthorName, r.Records)
	}
	return nil
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.ExportYAML(cmd.Context(), os.Stdout)
}
