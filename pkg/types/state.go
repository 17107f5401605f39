// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultMaxRecursions bounds how many extra research iterations unresolved
// conflicts may trigger. With the default of 2 a session runs at most 3 full
// iterations.
const DefaultMaxRecursions = 2

// ResearchState is the single aggregate holding everything a research session
// accumulates: evidence, dedup indexes, conflicts, recursion counters, the
// audit trail, and the final outputs. It is created empty once per session,
// mutated exclusively through knowledge.Store during the loop, and read once
// at the end by the output writer. Nothing persists across sessions.
//
// Invariants maintained by the store:
//   - WebSourcesSeen equals the set of Source values across WebClaims
//   - no two DocumentInsights share an InsightKey
//   - no two PDFChunks share a ChunkID
//   - RecursionCount never exceeds MaxRecursions
//   - ConfidenceScore is written only by CalculateConfidence and lies in [0,100]
type ResearchState struct {
	// Query is the research question driving the session.
	Query string `json:"query" yaml:"query"`

	// ResearchPlan is the parsed planning-stage output.
	ResearchPlan map[string]any `json:"research_plan" yaml:"research_plan"`

	// WebClaims accumulates claims, deduplicated by source. Append-only.
	WebClaims []Claim `json:"web_claims" yaml:"web_claims"`

	// WebSourcesSeen is the derived dedup index over claim sources.
	WebSourcesSeen map[string]struct{} `json:"-" yaml:"-"`

	// DocumentInsights accumulates insights, deduplicated by identity key.
	DocumentInsights []DocumentInsight `json:"document_insights" yaml:"document_insights"`

	// DocumentInsightsSeen is the derived dedup index over insight identities.
	DocumentInsightsSeen map[InsightKey]struct{} `json:"-" yaml:"-"`

	// PDFChunks accumulates raw document chunks, deduplicated by chunk id.
	PDFChunks []PDFChunk `json:"pdf_chunks" yaml:"pdf_chunks"`

	// ChunkIDsSeen is the derived dedup index over chunk ids.
	ChunkIDsSeen map[string]struct{} `json:"-" yaml:"-"`

	// EvidenceMap cross-references claim text to the sources asserting it.
	EvidenceMap map[string][]string `json:"evidence_map" yaml:"evidence_map"`

	// Conflicts holds the current iteration's registered conflicts.
	Conflicts []ConflictRecord `json:"conflicts" yaml:"conflicts"`

	// ConflictsDetected is true once any conflict has been registered and is
	// reset when the conflict slate is cleared for a recursive retry.
	ConflictsDetected bool `json:"conflicts_detected" yaml:"conflicts_detected"`

	// RecursionCount is the number of extra iterations taken so far.
	RecursionCount int `json:"recursion_count" yaml:"recursion_count"`

	// MaxRecursions bounds RecursionCount.
	MaxRecursions int `json:"max_recursions" yaml:"max_recursions"`

	// ReasoningTrace is the append-only audit log of session events,
	// including soft failures. Repeated identical entries are kept.
	ReasoningTrace []string `json:"reasoning_trace" yaml:"reasoning_trace"`

	// FinalReport is the generated report body plus the confidence footer.
	FinalReport string `json:"final_report" yaml:"final_report"`

	// ConfidenceScore is the 0-100 evidentiary-strength score.
	ConfidenceScore float64 `json:"confidence_score" yaml:"confidence_score"`
}

// NewResearchState returns an empty session state with initialized indexes
// and the default recursion bound.
func NewResearchState() *ResearchState {
	return &ResearchState{
		ResearchPlan:         map[string]any{},
		WebSourcesSeen:       map[string]struct{}{},
		DocumentInsightsSeen: map[InsightKey]struct{}{},
		ChunkIDsSeen:         map[string]struct{}{},
		EvidenceMap:          map[string][]string{},
		MaxRecursions:        DefaultMaxRecursions,
	}
}
