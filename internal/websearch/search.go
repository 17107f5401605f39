// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries a live web-search API and shapes the organic
// results into credibility-scored claims. Error items never reach the
// knowledge store; they are filtered here.
package websearch

import (
	"context"
	"fmt"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Backend queries a single search API. Implementations follow the Strategy
// pattern so tests can substitute a canned backend.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]Result, error)
}

// Claims runs the backend and converts its results into claims: the snippet
// (or title, when the snippet is empty) becomes the claim text and the
// scorer assigns source credibility. Results without a URL or any claim
// text are dropped.
func Claims(ctx context.Context, b Backend, query string, scorer *CredibilityScorer, cfg types.SearchConfig) ([]types.Claim, error) {
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	results, err := b.Search(ctx, query, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", b.Name(), err)
	}

	var claims []types.Claim
	for _, r := range results {
		text := r.Snippet
		if text == "" {
			text = r.Title
		}
		if text == "" || r.URL == "" {
			continue
		}

		claims = append(claims, types.Claim{
			Claim:            text,
			Source:           r.URL,
			SourceType:       "Web",
			CredibilityScore: scorer.Score(r.URL, ""),
		})
	}

	return claims, nil
}
