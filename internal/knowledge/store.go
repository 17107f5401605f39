// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge owns all mutation of the session ResearchState:
// idempotent evidence ingestion, conflict bookkeeping, recursion control,
// and confidence scoring. Nothing else writes to the state.
package knowledge

import (
	"fmt"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Store is the single point of truth for mutating a ResearchState. All
// ingestion is idempotent under the documented dedup keys (claim source,
// chunk id, insight identity), and no ingestion failure ever propagates to
// the caller: bad input becomes a reasoning-trace entry and is skipped.
type Store struct {
	state *types.ResearchState
}

// NewStore wraps a session state. The store does not copy the state; the
// caller keeps ownership of its lifecycle.
func NewStore(state *types.ResearchState) *Store {
	return &Store{state: state}
}

// State returns the wrapped aggregate for read access.
func (s *Store) State() *types.ResearchState {
	return s.state
}

// AddClaim ingests a validated web claim. A claim whose source has already
// been seen is silently ignored: at most one claim is kept per source, first
// write wins. Invalid claims are traced and skipped.
func (s *Store) AddClaim(c types.Claim) {
	if c.Claim == "" || c.Source == "" {
		s.AddReasoningStep("Web claim validation failed: missing claim or source.")
		return
	}
	if c.CredibilityScore < 0 || c.CredibilityScore > 1 {
		s.AddReasoningStep(fmt.Sprintf("Web claim validation failed: credibility %v out of range.", c.CredibilityScore))
		return
	}

	if _, seen := s.state.WebSourcesSeen[c.Source]; seen {
		return
	}

	s.state.WebClaims = append(s.state.WebClaims, c)
	s.state.WebSourcesSeen[c.Source] = struct{}{}
	s.state.EvidenceMap[c.Claim] = append(s.state.EvidenceMap[c.Claim], c.Source)
}

// AddWebClaim coerces loosely-typed claim data, as produced by a generative
// collaborator, into a Claim and ingests it via AddClaim.
func (s *Store) AddWebClaim(data any) {
	m, ok := data.(map[string]any)
	if !ok {
		s.AddReasoningStep(fmt.Sprintf("Web claim validation failed: not an object (%T).", data))
		return
	}

	c := types.Claim{
		Claim:           stringField(m, "claim"),
		Source:          stringField(m, "source"),
		PublicationDate: stringField(m, "publication_date"),
		SourceType:      stringField(m, "source_type"),
	}
	if v, ok := m["credibility_score"]; ok {
		f, ok := numberField(v)
		if !ok {
			s.AddReasoningStep(fmt.Sprintf("Web claim validation failed: credibility_score is %T.", v))
			return
		}
		c.CredibilityScore = f
	}

	s.AddClaim(c)
}

// AddPDFChunk ingests one document chunk. Chunks whose id has already been
// seen are silently ignored; invalid chunks are traced and skipped.
func (s *Store) AddPDFChunk(chunkID, sourceFile, text string) {
	if _, seen := s.state.ChunkIDsSeen[chunkID]; seen {
		return
	}
	if chunkID == "" || text == "" {
		s.AddReasoningStep("PDF chunk validation failed.")
		return
	}

	s.state.PDFChunks = append(s.state.PDFChunks, types.PDFChunk{
		ChunkID:    chunkID,
		SourceFile: sourceFile,
		Text:       text,
	})
	s.state.ChunkIDsSeen[chunkID] = struct{}{}
}

// AddDocumentInsight ingests loosely-typed insight data. Alias keys ("title",
// "findings") are accepted, missing required fields are defaulted, and
// duplicates under the (document_title, key_findings) identity are silently
// dropped.
func (s *Store) AddDocumentInsight(data any) {
	m, ok := data.(map[string]any)
	if !ok {
		s.AddReasoningStep(fmt.Sprintf("Document insight ignored (not an object): %T", data))
		return
	}

	if _, has := m["document_title"]; !has {
		if v, aliased := m["title"]; aliased {
			m["document_title"] = v
		}
	}
	if _, has := m["key_findings"]; !has {
		if v, aliased := m["findings"]; aliased {
			m["key_findings"] = v
		}
	}

	insight := types.DocumentInsight{
		DocumentTitle:   stringField(m, "document_title"),
		KeyFindings:     stringField(m, "key_findings"),
		SourceFile:      stringField(m, "source_file"),
		ChunkID:         stringField(m, "chunk_id"),
		Statistics:      stringField(m, "statistics"),
		Methodology:     stringField(m, "methodology"),
		Limitations:     stringField(m, "limitations"),
		ConfidenceLevel: stringField(m, "confidence_level"),
	}
	if v, ok := m["page_number"]; ok {
		if f, ok := numberField(v); ok {
			insight.PageNumber = int(f)
		}
	}

	if insight.DocumentTitle == "" {
		insight.DocumentTitle = "Unknown Document"
	}
	if insight.KeyFindings == "" {
		insight.KeyFindings = "No findings provided"
	}

	key := insight.Key()
	if _, seen := s.state.DocumentInsightsSeen[key]; seen {
		return
	}
	s.state.DocumentInsights = append(s.state.DocumentInsights, insight)
	s.state.DocumentInsightsSeen[key] = struct{}{}
}

// RegisterConflict records a cross-source conflict. Severity is normalized
// case-insensitively; anything outside High/Medium/Low coerces to Medium.
// Never fails.
func (s *Store) RegisterConflict(issue string, sources []string, severity string) {
	s.state.Conflicts = append(s.state.Conflicts, types.ConflictRecord{
		Issue:              issue,
		ConflictingSources: sources,
		Severity:           types.NormalizeSeverity(severity),
	})
	s.state.ConflictsDetected = true
}

// DeclareConflicts marks conflicts as present without recording a detail.
// The conflict report may assert that conflicts exist even when none of its
// detail entries parse; recursion is gated on this flag, not on the detail
// count.
func (s *Store) DeclareConflicts() {
	s.state.ConflictsDetected = true
}

// ClearConflicts resets the conflict slate before a recursive retry. All
// other accumulated evidence is retained.
func (s *Store) ClearConflicts() {
	s.state.Conflicts = nil
	s.state.ConflictsDetected = false
}

// IncrementRecursion advances the recursion counter. The counter never
// exceeds MaxRecursions; callers must gate recursion on CanRecurse.
func (s *Store) IncrementRecursion() {
	if s.CanRecurse() {
		s.state.RecursionCount++
	}
}

// CanRecurse reports whether another research iteration is allowed.
func (s *Store) CanRecurse() bool {
	return s.state.RecursionCount < s.state.MaxRecursions
}

// SetResearchPlan replaces the planning-stage output.
func (s *Store) SetResearchPlan(plan map[string]any) {
	s.state.ResearchPlan = plan
}

// SetFinalReport stores the completed report text.
func (s *Store) SetFinalReport(report string) {
	s.state.FinalReport = report
}

// AddReasoningStep appends to the audit trail. Repeated identical messages
// are kept; the trace never deduplicates.
func (s *Store) AddReasoningStep(step string) {
	s.state.ReasoningTrace = append(s.state.ReasoningTrace, step)
}

// stringField reads m[key] as a string, returning "" for absent or
// non-string values.
func stringField(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return v
}

// numberField reads a JSON number that may arrive as float64 or int.
func numberField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
