// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citecontext CLI: citation-context
// evidence extraction from the Semantic Scholar Graph API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citecontext/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, then the named secret,
// then the named viper key (env or config file), then "".
func secretDefault(secretKey, viperKey, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[secretKey]; ok {
		return v
	}
	if viperKey != "" {
		if v := viper.GetString(viperKey); v != "" {
			return v
		}
	}
	return ""
}

// rootCmd is the base command for the citecontext CLI.
var rootCmd = &cobra.Command{
	Use:   "citecontext",
	Short: "Extract verifiable citation-context evidence from Semantic Scholar",
	Long: `citecontext retrieves who cites a target author, selects the most
relevant citing papers, and emits an evidence table with the exact
citation sentences.

The run subcommand executes the full pipeline; earliest resolves a single
author's earliest publication year; enrich adds web-searched title
summaries to an existing output; store indexes run outputs in SQLite for
later querying.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citecontext.yaml or ~/.config/citecontext/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citecontext")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citecontext"))
		}
	}

	viper.SetEnvPrefix("CITECONTEXT")
	viper.AutomaticEnv()

	// Legacy env var for the API key, kept for parity with other tools.
	viper.BindEnv("semantic_scholar_api_key", "SEMANTIC_SCHOLAR_API_KEY")
	viper.BindEnv("llm_api_key", "LLM_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger; --verbose enables debug output.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
