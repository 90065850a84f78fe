// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citecontext/internal/pipeline"
	"github.com/pdiddy/citecontext/internal/progress"
	"github.com/pdiddy/citecontext/internal/render"
	"github.com/pdiddy/citecontext/internal/s2"
	"github.com/pdiddy/citecontext/pkg/types"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMinInterval = 250 * time.Millisecond
	defaultUserAgent   = "citecontext/0.1"
)

var defaultCacheDir = filepath.Join(".cache", "semanticscholar")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the citation-evidence pipeline for one author",
	Long: `Run resolves the target author, ranks their papers by citation count,
scans each paper's citations, keeps the top citing papers, and writes the
evidence records as JSON and a Markdown table.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("author-name", "", "author name, e.g. 'Jieru Zhao'")
	runCmd.Flags().String("author-id", "", "Semantic Scholar authorId (bypasses search)")
	runCmd.Flags().String("affiliation", "", "keyword to disambiguate author search")
	runCmd.Flags().Bool("strict", false, "abort when the author search is ambiguous")

	runCmd.Flags().Int("max-target-papers", 20, "top-K target papers for the author")
	runCmd.Flags().Int("scan-citations-per-paper", 1000, "citations scanned per target paper")
	runCmd.Flags().Int("top-citations-per-paper", 3, "top-N citing papers kept per target paper")
	runCmd.Flags().Int("max-records", 60, "maximum output records in total")
	runCmd.Flags().Bool("influential-only", true, "keep only influential citations when flagged")
	runCmd.Flags().Bool("require-context", true, "keep only citations with context sentences")
	runCmd.Flags().Bool("earliest-author", true, "resolve the earliest-publishing co-author per citing paper")
	runCmd.Flags().Int("cutoff-year", 0, "upper bound for the earliest-year search (default: current year)")

	runCmd.Flags().String("output-json", "output.json", "output JSON file path")
	runCmd.Flags().String("output-md", "output.md", "output Markdown file path")
	runCmd.Flags().Int("max-context-chars", 280, "max characters for the Markdown context cell")

	runCmd.Flags().String("api-key", "", "Semantic Scholar API key (or SEMANTIC_SCHOLAR_API_KEY)")
	runCmd.Flags().String("cache-dir", defaultCacheDir, "directory for the HTTP response cache")
	runCmd.Flags().Duration("cache-ttl", 0, "response cache TTL (0: never expires)")
	runCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	runCmd.Flags().Duration("min-interval", defaultMinInterval, "client-side delay between requests")
	runCmd.Flags().Int("max-retries", 6, "retries on 429/5xx/network failure")

	rootCmd.AddCommand(runCmd)
}

func clientConfigFromFlags(cmd *cobra.Command) types.ClientConfig {
	apiKey, _ := cmd.Flags().GetString("api-key")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	minInterval, _ := cmd.Flags().GetDuration("min-interval")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")

	return types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIKey:      secretDefault("semantic-scholar-api-key", "semantic_scholar_api_key", apiKey),
		CacheDir:    cacheDir,
		CacheTTL:    cacheTTL,
		MinInterval: minInterval,
		MaxRetries:  maxRetries,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	authorName, _ := cmd.Flags().GetString("author-name")
	authorID, _ := cmd.Flags().GetString("author-id")
	if authorName == "" && authorID == "" {
		return fmt.Errorf("provide --author-name or --author-id")
	}

	affiliation, _ := cmd.Flags().GetString("affiliation")
	strict, _ := cmd.Flags().GetBool("strict")
	maxTargetPapers, _ := cmd.Flags().GetInt("max-target-papers")
	scanPerPaper, _ := cmd.Flags().GetInt("scan-citations-per-paper")
	topPerPaper, _ := cmd.Flags().GetInt("top-citations-per-paper")
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	influentialOnly, _ := cmd.Flags().GetBool("influential-only")
	requireContext, _ := cmd.Flags().GetBool("require-context")
	earliestAuthor, _ := cmd.Flags().GetBool("earliest-author")
	cutoffYear, _ := cmd.Flags().GetInt("cutoff-year")
	outputJSON, _ := cmd.Flags().GetString("output-json")
	outputMD, _ := cmd.Flags().GetString("output-md")
	maxContextChars, _ := cmd.Flags().GetInt("max-context-chars")

	client, err := s2.NewClient(clientConfigFromFlags(cmd), newLogger(cmd))
	if err != nil {
		return err
	}

	runCfg := types.RunConfig{
		AuthorName:            authorName,
		AuthorID:              authorID,
		AffiliationKeyword:    affiliation,
		StrictDisambiguation:  strict,
		MaxTargetPapers:       maxTargetPapers,
		ScanCitationsPerPaper: scanPerPaper,
		TopCitationsPerPaper:  topPerPaper,
		MaxRecords:            maxRecords,
		InfluentialOnly:       influentialOnly,
		RequireContext:        requireContext,
		EarliestAuthor:        earliestAuthor,
		CutoffYear:            cutoffYear,
	}

	out, err := pipeline.Run(cmd.Context(), client, runCfg, &progress.Writer{Out: os.Stderr}, os.Stderr)
	if err != nil {
		return err
	}

	if err := writeRunOutput(out, outputJSON); err != nil {
		return err
	}
	if err := writeMarkdown(out.Records, types.RenderConfig{MaxContextChars: maxContextChars}, outputMD); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %d records to %s and %s\n", len(out.Records), outputJSON, outputMD)
	return nil
}

func writeRunOutput(out *types.RunOutput, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := render.WriteJSON(out, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeMarkdown(records []types.OutputRecord, cfg types.RenderConfig, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := render.WriteMarkdown(records, cfg, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
