package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func init() {
	backoffBase = time.Millisecond
}

// scriptedBackend returns canned responses per stage and records calls.
type scriptedBackend struct {
	responses map[Stage]string
	failures  map[Stage]int // remaining errors before success
	calls     []Stage
	prompts   map[Stage]string
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{
		responses: map[Stage]string{
			StagePlan:      `{"research_objective": "o"}`,
			StageClaims:    `[]`,
			StageInsights:  `[]`,
			StageConflicts: `{"conflicts_detected": false}`,
			StageReport:    "Report body.",
		},
		failures: map[Stage]int{},
		prompts:  map[Stage]string{},
	}
}

func (b *scriptedBackend) Run(ctx context.Context, stage Stage, prompt string) (string, error) {
	b.calls = append(b.calls, stage)
	b.prompts[stage] = prompt
	if b.failures[stage] > 0 {
		b.failures[stage]--
		return "", errors.New("transient backend error")
	}
	return b.responses[stage], nil
}

func TestExecuteStageOrder(t *testing.T) {
	b := newScriptedBackend()

	outputs, err := Execute(context.Background(), b, "test query", 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(outputs) != len(Stages) {
		t.Fatalf("want %d outputs, got %d", len(Stages), len(outputs))
	}
	for i, stage := range Stages {
		if b.calls[i] != stage {
			t.Errorf("call %d: want %s, got %s", i, stage, b.calls[i])
		}
	}
}

func TestExecuteThreadsPriorOutputs(t *testing.T) {
	b := newScriptedBackend()

	if _, err := Execute(context.Background(), b, "test query", 3); err != nil {
		t.Fatal(err)
	}

	// The conflict prompt must carry the claims and insights stage outputs.
	conflictPrompt := b.prompts[StageConflicts]
	if !strings.Contains(conflictPrompt, string(StageClaims)) {
		t.Errorf("conflict prompt missing claims context")
	}
	// The report prompt carries everything before it.
	reportPrompt := b.prompts[StageReport]
	for _, stage := range Stages[:4] {
		if !strings.Contains(reportPrompt, b.responses[stage]) {
			t.Errorf("report prompt missing %s output", stage)
		}
	}
	// The plan prompt carries nothing.
	if strings.Contains(b.prompts[StagePlan], "earlier stage") {
		t.Errorf("plan prompt should have no prior context")
	}
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	b := newScriptedBackend()
	b.failures[StageClaims] = 2

	outputs, err := Execute(context.Background(), b, "q", 3)
	if err != nil {
		t.Fatalf("transient failures should be retried: %v", err)
	}
	if outputs[StageClaims] != `[]` {
		t.Errorf("claims output lost after retry")
	}
}

func TestExecuteTotalFailure(t *testing.T) {
	b := newScriptedBackend()
	b.failures[StageInsights] = 10

	_, err := Execute(context.Background(), b, "q", 2)
	if err == nil {
		t.Fatal("want error after retries exhausted")
	}
	if !strings.Contains(err.Error(), string(StageInsights)) {
		t.Errorf("error should name the failing stage: %v", err)
	}
}

func TestBuildPromptQuotesQuery(t *testing.T) {
	for _, stage := range Stages {
		p := BuildPrompt(stage, "impact of quantization", nil)
		if !strings.Contains(p, fmt.Sprintf("%q", "impact of quantization")) {
			t.Errorf("stage %s prompt missing query", stage)
		}
	}
}
