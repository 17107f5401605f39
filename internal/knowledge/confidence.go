// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"math"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Component weights of the confidence formula.
const (
	credibilityWeight = 0.40
	sourcesWeight     = 0.25
	pdfWeight         = 0.20
	docWeight         = 0.15

	// Neutral credibility used when no web claims exist (the PDF-only case).
	neutralCredibility = 0.5

	// Saturation points: 10 independent sources, 15 and 10 document insights.
	sourcesSaturation     = 10.0
	pdfStrengthSaturation = 15.0
	docStrengthSaturation = 10.0
)

// severityPenalty subtracted per registered conflict.
var severityPenalties = map[types.Severity]float64{
	types.SeverityHigh:   0.15,
	types.SeverityMedium: 0.08,
	types.SeverityLow:    0.03,
}

// CalculateConfidence computes the 0-100 evidentiary-strength score from the
// current state, stores it in ConfidenceScore, and returns it. With no web
// claims and no PDF chunks the score is exactly 0.0. The computation is
// deterministic and idempotent given unchanged state; ConfidenceScore is the
// only field it writes.
//
// Both document-strength terms derive from the document-insight count (with
// different saturation points), not from raw PDF-chunk volume.
func (s *Store) CalculateConfidence() float64 {
	st := s.state

	if len(st.WebClaims) == 0 && len(st.PDFChunks) == 0 {
		st.ConfidenceScore = 0.0
		return 0.0
	}

	avgCredibility := neutralCredibility
	if len(st.WebClaims) > 0 {
		var sum float64
		for _, c := range st.WebClaims {
			adjusted := c.CredibilityScore + AuthorityBoost(c.Source)
			sum += clamp01(adjusted)
		}
		avgCredibility = sum / float64(len(st.WebClaims))
	}

	independentSources := float64(len(st.WebSourcesSeen))
	insights := float64(len(st.DocumentInsights))

	pdfStrength := math.Min(insights/pdfStrengthSaturation, 1.0)
	docStrength := math.Min(insights/docStrengthSaturation, 1.0)

	var penalty float64
	for _, c := range st.Conflicts {
		penalty += severityPenalties[c.Severity]
	}

	raw := avgCredibility*credibilityWeight +
		math.Min(independentSources/sourcesSaturation, 1.0)*sourcesWeight +
		pdfStrength*pdfWeight +
		docStrength*docWeight -
		penalty

	raw = clamp01(raw)

	st.ConfidenceScore = math.Round(raw*10000) / 100
	return st.ConfidenceScore
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(v, 1.0))
}
