// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strings"
)

// Stage prompt templates. Each instructs the model to return strict JSON
// (except the report, which is prose); recovery from sloppy output is
// handled downstream by ExtractJSON.

const planPromptTmpl = `You are given the research query:

%q

1. Restate the core objective clearly.
2. Break it into 4-6 structured sub-questions.
3. Identify required data types.
4. Define a validation strategy.
5. Highlight possible risk areas.

STRICTLY return ONLY valid JSON:

{
  "research_objective": "...",
  "sub_questions": ["...", "..."],
  "data_requirements": ["..."],
  "validation_strategy": "...",
  "risk_areas": ["..."]
}

No explanation. No markdown.`

const claimsPromptTmpl = `Using the structured research plan, extract verified web claims
related to:

%q

For each claim include:

- claim
- source
- publication_date
- source_type
- credibility_score (0-1)

STRICTLY return ONLY a JSON list:

[
  {
    "claim": "...",
    "source": "...",
    "publication_date": "...",
    "source_type": "...",
    "credibility_score": 0.0
  }
]

No markdown. No explanation.`

const insightsPromptTmpl = `Analyze relevant academic or technical evidence related to:

%q

Extract structured insights:

[
  {
    "document_title": "...",
    "key_findings": "...",
    "statistics": "...",
    "methodology": "...",
    "limitations": "...",
    "confidence_level": "High/Medium/Low"
  }
]

STRICT JSON only. No commentary.`

const conflictsPromptTmpl = `Compare the structured web claims and document insights gathered for:

%q

Detect:

- Contradictory claims
- Statistical inconsistencies
- Outdated or low-credibility evidence

Return STRICT JSON:

{
  "conflicts_detected": true,
  "conflict_details": [
    {
      "issue": "...",
      "conflicting_sources": ["...", "..."],
      "severity": "High/Medium/Low"
    }
  ]
}

Set "conflicts_detected" to false with an empty "conflict_details" list when
the evidence is consistent. No explanation outside the JSON.`

const reportPromptTmpl = `Generate a structured academic research report for:

%q

Structure:

1. Executive Summary
2. Research Objective
3. Key Findings (cite sources inline)
4. Cross-Source Analysis
5. Conflict Explanation
6. Limitations
7. Conclusion
8. Confidence Assessment

Integrate the web claims, document insights, and conflict analysis provided
as context. Write in a formal academic tone. Do NOT output JSON.`

var stagePrompts = map[Stage]string{
	StagePlan:      planPromptTmpl,
	StageClaims:    claimsPromptTmpl,
	StageInsights:  insightsPromptTmpl,
	StageConflicts: conflictsPromptTmpl,
	StageReport:    reportPromptTmpl,
}

// BuildPrompt renders the stage prompt for a query, appending the raw
// outputs of earlier stages as context.
func BuildPrompt(stage Stage, query string, prior []StageContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, stagePrompts[stage], query)

	for _, p := range prior {
		b.WriteString("\n\n--- Output of earlier stage ")
		b.WriteString(string(p.Stage))
		b.WriteString(" ---\n")
		b.WriteString(p.Raw)
	}

	return b.String()
}
