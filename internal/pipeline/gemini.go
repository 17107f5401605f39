// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pdiddy/deep-research/pkg/types"
)

const defaultModel = "gemini-2.0-flash"

// GeminiBackend runs synthesis stages against the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini-backed pipeline from AI settings.
func NewGeminiBackend(ctx context.Context, cfg types.AIConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Run sends one stage prompt and returns the raw response text.
func (b *GeminiBackend) Run(ctx context.Context, stage Stage, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generating %s stage: %w", stage, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response for %s stage", stage)
	}
	return text, nil
}
