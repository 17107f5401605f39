// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the five-stage generative synthesis: planning,
// web-claim extraction, document-insight extraction, conflict detection, and
// report generation. Each stage consumes the prior stages' raw outputs as
// context. Stage outputs are raw text; recovery of structured data from them
// is the caller's concern (see ExtractJSON).
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Stage identifies one synthesis stage.
type Stage string

const (
	StagePlan      Stage = "plan"
	StageClaims    Stage = "web_claims"
	StageInsights  Stage = "document_insights"
	StageConflicts Stage = "conflicts"
	StageReport    Stage = "report"
)

// Stages lists the synthesis stages in execution order.
var Stages = []Stage{StagePlan, StageClaims, StageInsights, StageConflicts, StageReport}

// Backend abstracts the Generative AI API so tests can supply a mock.
// Each call handles a single stage prompt and returns the raw response text.
type Backend interface {
	Run(ctx context.Context, stage Stage, prompt string) (string, error)
}

// Outputs holds the raw text each stage produced, keyed by stage.
type Outputs map[Stage]string

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

const defaultMaxRetries = 3

// Execute runs all stages in order against the backend, threading earlier
// raw outputs into later prompts. A stage that still fails after retries
// aborts the pipeline as a whole: the session must then finalize with
// whatever evidence has already accumulated.
func Execute(ctx context.Context, backend Backend, query string, maxRetries int) (Outputs, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	outputs := Outputs{}
	var prior []StageContext

	for _, stage := range Stages {
		prompt := BuildPrompt(stage, query, prior)

		raw, err := runWithRetry(ctx, backend, stage, prompt, maxRetries)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}

		outputs[stage] = raw
		prior = append(prior, StageContext{Stage: stage, Raw: raw})
	}

	return outputs, nil
}

// StageContext carries one completed stage's raw output into later prompts.
type StageContext struct {
	Stage Stage
	Raw   string
}

// runWithRetry calls the backend with exponential backoff.
func runWithRetry(ctx context.Context, backend Backend, stage Stage, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := backend.Run(ctx, stage, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
