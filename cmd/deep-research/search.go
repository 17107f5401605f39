// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/websearch"
	"github.com/pdiddy/deep-research/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-shot web search and print the scored claims",
	Long: `Search queries the Serper web-search API once and prints the claims the
engine would ingest, including the credibility score assigned to each
source. Useful for inspecting the web channel without running a session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		asJSON, _ := cmd.Flags().GetBool("json")

		apiKey := secretDefault("serper-api-key", "SERPER_API_KEY", "")
		if apiKey == "" {
			return fmt.Errorf("serper API key is required (secret serper-api-key or SERPER_API_KEY)")
		}

		backend := &websearch.SerperBackend{
			Client:   &http.Client{Timeout: 30 * time.Second},
			APIKey:   apiKey,
			Progress: os.Stderr,
		}
		cfg := types.SearchConfig{MaxResults: maxResults}

		claims, err := websearch.Claims(cmd.Context(), backend, query, websearch.NewCredibilityScorer(), cfg)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		}

		for _, c := range claims {
			fmt.Printf("%.2f  %s\n      %s\n", c.CredibilityScore, c.Claim, c.Source)
		}
		fmt.Fprintf(os.Stderr, "%d claims\n", len(claims))
		return nil
	},
}

func init() {
	searchCmd.Flags().String("query", "", "free-text research question")
	searchCmd.Flags().Int("max-results", 10, "maximum number of results to return")
	searchCmd.Flags().Bool("json", false, "output claims as JSON")
	_ = searchCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(searchCmd)
}
