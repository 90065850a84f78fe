// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citecontext/internal/s2"
)

var earliestCmd = &cobra.Command{
	Use:   "earliest [author-id]",
	Short: "Resolve an author's earliest publication year",
	Long: `Earliest binary-searches the year axis with size-1 existence probes to
find the earliest calendar year in which the author has a publication,
without downloading their full bibliography.`,
	Args: cobra.ExactArgs(1),
	RunE: runEarliest,
}

func init() {
	earliestCmd.Flags().Int("min-year", 0, "lower bound of the search window (default 1800)")
	earliestCmd.Flags().Int("cutoff-year", 0, "upper bound of the search window (default: current year)")

	earliestCmd.Flags().String("api-key", "", "Semantic Scholar API key (or SEMANTIC_SCHOLAR_API_KEY)")
	earliestCmd.Flags().String("cache-dir", defaultCacheDir, "directory for the HTTP response cache")
	earliestCmd.Flags().Duration("cache-ttl", 0, "response cache TTL (0: never expires)")
	earliestCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	earliestCmd.Flags().Duration("min-interval", defaultMinInterval, "client-side delay between requests")
	earliestCmd.Flags().Int("max-retries", 6, "retries on 429/5xx/network failure")

	rootCmd.AddCommand(earliestCmd)
}

func runEarliest(cmd *cobra.Command, args []string) error {
	minYear, _ := cmd.Flags().GetInt("min-year")
	cutoffYear, _ := cmd.Flags().GetInt("cutoff-year")

	client, err := s2.NewClient(clientConfigFromFlags(cmd), newLogger(cmd))
	if err != nil {
		return err
	}

	year, err := client.EarliestPublicationYear(cmd.Context(), args[0], minYear, cutoffYear)
	if err != nil {
		return err
	}
	if year == nil {
		fmt.Println("unknown")
		return nil
	}
	fmt.Println(*year)
	return nil
}
