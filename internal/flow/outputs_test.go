package flow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

func TestWriteOutputsEmptyState(t *testing.T) {
	state := types.NewResearchState()
	state.Query = "empty session"
	state.FinalReport = "nothing found\n\n---\nSystem Confidence Score: 0% (Calculated)\n"

	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteOutputs(state, dir); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{ReportFile, TraceFile, ConflictsFile, SummaryFile, EvidenceFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}

	// Both files are top-level JSON arrays; empty collections serialize as
	// [], never null.
	data, err := os.ReadFile(filepath.Join(dir, TraceFile))
	if err != nil {
		t.Fatal(err)
	}
	var trace []string
	if err := json.Unmarshal(data, &trace); err != nil {
		t.Fatalf("trace file is not a JSON array: %v\n%s", err, data)
	}
	if trace == nil {
		t.Errorf("empty trace serialized as null: %s", data)
	}

	data, err = os.ReadFile(filepath.Join(dir, ConflictsFile))
	if err != nil {
		t.Fatal(err)
	}
	var conflicts []types.ConflictRecord
	if err := json.Unmarshal(data, &conflicts); err != nil {
		t.Fatalf("conflicts file is not a JSON array: %v\n%s", err, data)
	}
	if conflicts == nil {
		t.Errorf("empty conflicts serialized as null: %s", data)
	}
}

func TestWriteOutputsTraceAndConflictsArrays(t *testing.T) {
	state := types.NewResearchState()
	state.Query = "array artifacts"
	state.ReasoningTrace = []string{"Web search completed.", "PDF indexing completed."}
	state.Conflicts = []types.ConflictRecord{{
		Issue:              "Dates disagree",
		ConflictingSources: []string{"https://a.com", "https://b.com"},
		Severity:           types.SeverityHigh,
	}}
	state.ConflictsDetected = true

	dir := t.TempDir()
	if err := WriteOutputs(state, dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, TraceFile))
	if err != nil {
		t.Fatal(err)
	}
	var trace []string
	if err := json.Unmarshal(data, &trace); err != nil {
		t.Fatalf("trace file is not a JSON array: %v\n%s", err, data)
	}
	if len(trace) != 2 || trace[0] != "Web search completed." {
		t.Errorf("trace order lost: %v", trace)
	}

	data, err = os.ReadFile(filepath.Join(dir, ConflictsFile))
	if err != nil {
		t.Fatal(err)
	}
	var conflicts []types.ConflictRecord
	if err := json.Unmarshal(data, &conflicts); err != nil {
		t.Fatalf("conflicts file is not a JSON array: %v\n%s", err, data)
	}
	if len(conflicts) != 1 || conflicts[0].Issue != "Dates disagree" {
		t.Errorf("conflict records lost: %+v", conflicts)
	}
	if conflicts[0].Severity != types.SeverityHigh {
		t.Errorf("severity = %v", conflicts[0].Severity)
	}
}

func TestWriteOutputsSummary(t *testing.T) {
	state := types.NewResearchState()
	state.Query = "summary fields"
	state.ConfidenceScore = 42.5
	state.RecursionCount = 2

	dir := t.TempDir()
	if err := WriteOutputs(state, dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	var summary struct {
		Query           string  `json:"query"`
		ConfidenceScore float64 `json:"confidence_score"`
		RecursionCount  int     `json:"recursion_count"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Query != "summary fields" || summary.ConfidenceScore != 42.5 || summary.RecursionCount != 2 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestWriteOutputsEvidenceYAML(t *testing.T) {
	state := types.NewResearchState()
	state.Query = "evidence export"
	state.WebClaims = []types.Claim{{
		Claim:            "Indexes speed up retrieval",
		Source:           "https://example.com/db",
		CredibilityScore: 0.55,
	}}
	state.DocumentInsights = []types.DocumentInsight{{
		DocumentTitle: "Storage Survey",
		KeyFindings:   "B-trees dominate",
	}}
	state.EvidenceMap = map[string][]string{
		"Indexes speed up retrieval": {"https://example.com/db"},
	}

	dir := t.TempDir()
	if err := WriteOutputs(state, dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, EvidenceFile))
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Query       string                  `yaml:"query"`
		WebClaims   []types.Claim           `yaml:"web_claims"`
		DocInsights []types.DocumentInsight `yaml:"document_insights"`
		EvidenceMap map[string][]string     `yaml:"evidence_map"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.WebClaims) != 1 || doc.WebClaims[0].Source != "https://example.com/db" {
		t.Errorf("claims round-trip failed: %+v", doc.WebClaims)
	}
	if len(doc.DocInsights) != 1 || doc.DocInsights[0].DocumentTitle != "Storage Survey" {
		t.Errorf("insights round-trip failed: %+v", doc.DocInsights)
	}
	if len(doc.EvidenceMap["Indexes speed up retrieval"]) != 1 {
		t.Errorf("evidence map round-trip failed: %+v", doc.EvidenceMap)
	}
}

func TestWriteOutputsReportContent(t *testing.T) {
	state := types.NewResearchState()
	state.FinalReport = "the report body\n\n---\nSystem Confidence Score: 26.5% (Calculated)\n"

	dir := t.TempDir()
	if err := WriteOutputs(state, dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != state.FinalReport {
		t.Errorf("report written verbatim mismatch: %q", data)
	}
}
