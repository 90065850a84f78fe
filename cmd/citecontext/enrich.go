// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citecontext/internal/enrich"
	"github.com/pdiddy/citecontext/internal/progress"
	"github.com/pdiddy/citecontext/pkg/types"
)

var defaultEnrichCacheDir = filepath.Join(".cache", "titlesearch")

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add web-searched title summaries to an existing output JSON",
	Long: `Enrich reads a run's output JSON, searches the web for each earliest
citing author, summarizes their notable titles with an LLM, and writes
the enriched JSON (and optionally a refreshed Markdown table).`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("input", "", "input JSON produced by the run subcommand (required)")
	enrichCmd.Flags().String("output", "", "output enriched JSON path (required)")
	enrichCmd.Flags().String("output-md", "", "optional output Markdown path")
	enrichCmd.Flags().Int("max-context-chars", 280, "max characters for the Markdown context cell")

	enrichCmd.Flags().String("api-base", "", "OpenAI-compatible API base URL (or .secrets/llm-api-base)")
	enrichCmd.Flags().String("api-key", "", "LLM API key (or LLM_API_KEY)")
	enrichCmd.Flags().String("model", "deepseek-v3-1-250821", "LLM model name")
	enrichCmd.Flags().String("cache-dir", defaultEnrichCacheDir, "title search cache directory")
	enrichCmd.Flags().Int("num-search-results", 5, "search hits visited per query")
	enrichCmd.Flags().Int("max-page-chars", 3000, "max extracted characters per visited page")
	enrichCmd.Flags().Duration("fetch-timeout", 15*time.Second, "page fetch timeout")

	enrichCmd.MarkFlagRequired("input")
	enrichCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	outputMD, _ := cmd.Flags().GetString("output-md")
	maxContextChars, _ := cmd.Flags().GetInt("max-context-chars")

	apiBase, _ := cmd.Flags().GetString("api-base")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	numResults, _ := cmd.Flags().GetInt("num-search-results")
	maxPageChars, _ := cmd.Flags().GetInt("max-page-chars")
	fetchTimeout, _ := cmd.Flags().GetDuration("fetch-timeout")

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	var out types.RunOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("parsing %s: %w", input, err)
	}

	cfg := types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   fetchTimeout,
			UserAgent: defaultUserAgent,
		},
		APIBase:          secretDefault("llm-api-base", "llm_api_base", apiBase),
		APIKey:           secretDefault("llm-api-key", "llm_api_key", apiKey),
		Model:            model,
		CacheDir:         cacheDir,
		NumSearchResults: numResults,
		MaxPageChars:     maxPageChars,
	}

	agent, err := enrich.NewAgent(cfg,
		enrich.NewDuckDuckGoSearcher(fetchTimeout),
		enrich.NewHTTPPageFetcher(fetchTimeout),
		enrich.NewOpenAIChat(cfg),
	)
	if err != nil {
		return err
	}

	if err := enrich.EnrichRecords(cmd.Context(), agent, out.Records, &progress.Writer{Out: os.Stderr}); err != nil {
		return err
	}

	if err := writeRunOutput(&out, output); err != nil {
		return err
	}
	if outputMD != "" {
		if err := writeMarkdown(out.Records, types.RenderConfig{MaxContextChars: maxContextChars}, outputMD); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "enriched %d records into %s\n", len(out.Records), output)
	return nil
}
