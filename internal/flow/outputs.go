// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Artifact file names within the output directory.
const (
	ReportFile    = "final_report.txt"
	TraceFile     = "reasoning_trace.json"
	ConflictsFile = "conflicts.json"
	SummaryFile   = "summary.json"
	EvidenceFile  = "evidence.yaml"
)

// WriteOutputs persists the session artifacts: the final report, the
// reasoning trace, the conflict log, a machine-readable summary, and the
// accumulated evidence. The trace and conflict files are top-level JSON
// arrays in emission order; empty collections serialize as [], never null.
func WriteOutputs(state *types.ResearchState, dir string) error {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ReportFile), []byte(state.FinalReport), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	trace := state.ReasoningTrace
	if trace == nil {
		trace = []string{}
	}
	if err := writeJSON(filepath.Join(dir, TraceFile), trace); err != nil {
		return err
	}

	conflicts := state.Conflicts
	if conflicts == nil {
		conflicts = []types.ConflictRecord{}
	}
	if err := writeJSON(filepath.Join(dir, ConflictsFile), conflicts); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, SummaryFile), map[string]any{
		"query":            state.Query,
		"confidence_score": state.ConfidenceScore,
		"recursion_count":  state.RecursionCount,
	}); err != nil {
		return err
	}

	return writeEvidence(filepath.Join(dir, EvidenceFile), state)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeEvidence exports the evidence base as YAML for human review.
func writeEvidence(path string, state *types.ResearchState) error {
	claims := state.WebClaims
	if claims == nil {
		claims = []types.Claim{}
	}
	insights := state.DocumentInsights
	if insights == nil {
		insights = []types.DocumentInsight{}
	}

	doc := map[string]any{
		"query":              state.Query,
		"web_claims":         claims,
		"document_insights":  insights,
		"evidence_map":       state.EvidenceMap,
		"conflicts_detected": state.ConflictsDetected,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding evidence: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing evidence: %w", err)
	}
	return nil
}
