// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// serperAPIBase is the Serper search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serperAPIBase = "https://google.serper.dev/search"

// SerperBackend queries the Serper web-search API.
type SerperBackend struct {
	Client *http.Client
	APIKey string

	// Progress, when set, receives rate-limit retry notices.
	Progress io.Writer
}

// Name returns the backend identifier.
func (b *SerperBackend) Name() string { return "serper" }

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search posts the query to Serper and returns the organic results.
func (b *SerperBackend) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]Result, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("serper API key not configured")
	}

	body, err := json.Marshal(serperRequest{Query: query, Num: cfg.MaxResults})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-KEY", b.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0, b.Progress)
	if err != nil {
		return nil, fmt.Errorf("serper API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper API returned HTTP %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing serper response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Organic))
	for _, item := range parsed.Organic {
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
