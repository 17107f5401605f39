// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Severity weights a conflict's impact on the final confidence score.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// NormalizeSeverity folds arbitrary severity text onto the High/Medium/Low
// scale. Unrecognized values coerce to Medium.
func NormalizeSeverity(s string) Severity {
	switch Severity(capitalize(s)) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// capitalize upper-cases the first ASCII letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	for i := 1; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// Claim is a single factual assertion gathered from the live web. Claims are
// immutable once stored; at most one claim is kept per source URL.
type Claim struct {
	// Claim is the assertion text.
	Claim string `json:"claim" yaml:"claim"`

	// Source is the URL the claim was drawn from. Dedup key.
	Source string `json:"source" yaml:"source"`

	// PublicationDate is the source's publication date, when known (YYYY-MM-DD).
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// SourceType labels the origin kind (e.g. "Web").
	SourceType string `json:"source_type,omitempty" yaml:"source_type,omitempty"`

	// CredibilityScore is a value between 0.0 and 1.0 assigned at collection time.
	CredibilityScore float64 `json:"credibility_score" yaml:"credibility_score"`
}

// PDFChunk is one extracted span of a local document. Chunks are immutable
// and deduplicated by ChunkID.
type PDFChunk struct {
	// ChunkID uniquely identifies the chunk (e.g. "paper.pdf_chunk_3").
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`

	// SourceFile is the path of the PDF the chunk came from.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// Text is the chunk body.
	Text string `json:"text" yaml:"text"`
}

// DocumentInsight is a structured finding distilled from document evidence.
// Identity for deduplication is the (DocumentTitle, KeyFindings) pair.
type DocumentInsight struct {
	DocumentTitle string `json:"document_title" yaml:"document_title"`
	KeyFindings   string `json:"key_findings" yaml:"key_findings"`

	// Provenance, when available.
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	ChunkID    string `json:"chunk_id,omitempty" yaml:"chunk_id,omitempty"`
	PageNumber int    `json:"page_number,omitempty" yaml:"page_number,omitempty"`

	Statistics      string `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	Methodology     string `json:"methodology,omitempty" yaml:"methodology,omitempty"`
	Limitations     string `json:"limitations,omitempty" yaml:"limitations,omitempty"`
	ConfidenceLevel string `json:"confidence_level,omitempty" yaml:"confidence_level,omitempty"`
}

// InsightKey is the dedup identity of a DocumentInsight.
type InsightKey struct {
	Title    string
	Findings string
}

// Key returns the insight's dedup identity.
func (d DocumentInsight) Key() InsightKey {
	return InsightKey{Title: d.DocumentTitle, Findings: d.KeyFindings}
}

// ConflictRecord describes a cross-source disagreement flagged during synthesis.
type ConflictRecord struct {
	// Issue summarizes the disagreement.
	Issue string `json:"issue" yaml:"issue"`

	// ConflictingSources lists the sources involved, in reported order.
	ConflictingSources []string `json:"conflicting_sources" yaml:"conflicting_sources"`

	// Severity is always one of High, Medium, or Low.
	Severity Severity `json:"severity" yaml:"severity"`
}
