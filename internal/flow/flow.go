// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flow drives a research session through its control loop: collect
// evidence, synthesize through the generative pipeline, evaluate for
// conflicts, and either recurse or finalize. Collection failures degrade to
// reasoning-trace entries; only a total pipeline failure cuts an iteration
// short, and even then the session finalizes with whatever evidence it holds.
package flow

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/corpus"
	"github.com/pdiddy/deep-research/internal/index"
	"github.com/pdiddy/deep-research/internal/knowledge"
	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/internal/websearch"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Deps are the session collaborators. Web, Index, and Clusterer are optional:
// a nil collaborator disables that evidence channel with a trace entry rather
// than failing the session. Pipeline is required.
type Deps struct {
	Web       websearch.Backend
	Scorer    *websearch.CredibilityScorer
	Index     *index.Index
	Clusterer index.Clusterer
	Pipeline  pipeline.Backend
	Logger    *zap.Logger
}

// Session owns one research run over a single query.
type Session struct {
	ID string

	cfg    types.SessionConfig
	store  *knowledge.Store
	deps   Deps
	logger *zap.Logger

	// pdfIndexed guards one-time corpus ingestion; recursive passes re-query
	// the index but never re-extract the PDFs.
	pdfIndexed  bool
	reportDraft string
}

// NewSession builds a session around a fresh ResearchState.
func NewSession(cfg types.SessionConfig, deps Deps) (*Session, error) {
	if cfg.Query == "" {
		return nil, fmt.Errorf("research query is required")
	}
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("pipeline backend is required")
	}
	if deps.Scorer == nil {
		deps.Scorer = websearch.NewCredibilityScorer()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	state := types.NewResearchState()
	state.Query = cfg.Query
	if cfg.MaxRecursions > 0 {
		state.MaxRecursions = cfg.MaxRecursions
	}

	id := uuid.NewString()
	return &Session{
		ID:     id,
		cfg:    cfg,
		store:  knowledge.NewStore(state),
		deps:   deps,
		logger: deps.Logger.With(zap.String("session_id", id)),
	}, nil
}

// State exposes the session aggregate for inspection after Run.
func (s *Session) State() *types.ResearchState {
	return s.store.State()
}

// Run executes the full research loop and writes the session artifacts. The
// loop runs at most MaxRecursions+1 iterations: the initial pass plus one
// extra pass per allowed recursion when conflicts remain unresolved.
func (s *Session) Run(ctx context.Context) error {
	state := s.store.State()
	s.store.AddReasoningStep(fmt.Sprintf("Session %s started.", s.ID))

	for iteration := 0; iteration <= state.MaxRecursions; iteration++ {
		s.logger.Info("research iteration starting", zap.Int("iteration", iteration))
		s.collect(ctx)

		outputs, err := pipeline.Execute(ctx, s.deps.Pipeline, s.cfg.Query, s.cfg.Pipeline.MaxRetries)
		if err != nil {
			s.store.AddReasoningStep(fmt.Sprintf("Research pipeline failed: %v", err))
			s.logger.Warn("pipeline failed, finalizing early", zap.Error(err))
			break
		}

		s.evaluate(outputs)

		if state.ConflictsDetected && s.store.CanRecurse() {
			s.store.IncrementRecursion()
			s.store.AddReasoningStep(fmt.Sprintf(
				"Conflicts detected. Starting recursive research pass %d of %d.",
				state.RecursionCount, state.MaxRecursions))
			s.store.ClearConflicts()
			continue
		}
		break
	}

	s.finalize()

	if err := WriteOutputs(state, s.cfg.Output.Dir); err != nil {
		return fmt.Errorf("writing session outputs: %w", err)
	}
	s.logger.Info("session complete",
		zap.Float64("confidence", state.ConfidenceScore),
		zap.Int("recursions", state.RecursionCount))
	return nil
}

// collect gathers evidence from every configured channel. Each channel fails
// independently into the reasoning trace.
func (s *Session) collect(ctx context.Context) {
	s.collectWeb(ctx)
	s.indexPDFs(ctx)
	s.retrieveInsights(ctx)
}

func (s *Session) collectWeb(ctx context.Context) {
	if s.deps.Web == nil {
		s.store.AddReasoningStep("Web search skipped: no backend configured.")
		return
	}

	claims, err := websearch.Claims(ctx, s.deps.Web, s.cfg.Query, s.deps.Scorer, s.cfg.Search)
	if err != nil {
		s.store.AddReasoningStep(fmt.Sprintf("Web search failed: %v", err))
		s.logger.Warn("web search failed", zap.Error(err))
		return
	}

	for _, c := range claims {
		s.store.AddClaim(c)
	}
	s.store.AddReasoningStep("Web search completed.")
	s.logger.Info("web search completed", zap.Int("results", len(claims)))
}

// indexPDFs extracts and indexes the local PDF corpus exactly once per
// session.
func (s *Session) indexPDFs(ctx context.Context) {
	if s.pdfIndexed || s.deps.Index == nil {
		return
	}
	s.pdfIndexed = true

	dir := s.cfg.Documents.InputDir
	paths, err := corpus.ListPDFs(dir)
	if err != nil {
		s.store.AddReasoningStep(fmt.Sprintf("PDF discovery failed: %v", err))
		return
	}
	if len(paths) == 0 {
		s.store.AddReasoningStep(fmt.Sprintf("No PDFs found in %s.", dir))
		return
	}

	for _, path := range paths {
		doc, err := corpus.ExtractPDF(path,
			s.cfg.Documents.ChunkSize, s.cfg.Documents.ChunkOverlap, s.cfg.Documents.MinChunkLen)
		if err != nil {
			s.store.AddReasoningStep(fmt.Sprintf("Error processing PDF: %s", path))
			s.logger.Warn("pdf extraction failed", zap.String("path", path), zap.Error(err))
			continue
		}

		for _, c := range doc.Chunks {
			s.store.AddPDFChunk(c.ChunkID, c.SourceFile, c.Text)
		}
		if _, err := s.deps.Index.Add(ctx, doc.Chunks); err != nil {
			s.store.AddReasoningStep(fmt.Sprintf("Indexing failed for %s: %v", path, err))
		}
	}
	s.store.AddReasoningStep("PDF indexing completed.")
}

// retrieveInsights queries the chunk index for fragments relevant to the
// research question, groups them thematically, and ingests one insight per
// group.
func (s *Session) retrieveInsights(ctx context.Context) {
	if s.deps.Index == nil || s.deps.Clusterer == nil {
		return
	}

	frags, err := s.deps.Index.Query(ctx, s.cfg.Query, s.cfg.Index.TopK)
	if err != nil {
		s.store.AddReasoningStep(fmt.Sprintf("Document retrieval failed: %v", err))
		return
	}
	if len(frags) == 0 {
		return
	}

	texts := make([]string, len(frags))
	for i, f := range frags {
		texts[i] = f.Text
	}

	clusters, err := s.deps.Clusterer.Cluster(ctx, texts)
	if err != nil {
		// Collection never aborts on a clustering failure; the fragments
		// still contribute as one undifferentiated group.
		s.store.AddReasoningStep(fmt.Sprintf("Fragment clustering failed: %v", err))
		clusters = map[int][]string{0: texts}
	}

	ids := make([]int, 0, len(clusters))
	for id := range clusters {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	// One insight per fragment. The insight count drives the document
	// strength terms of the confidence score, so fragments are not collapsed
	// into their group.
	for _, id := range ids {
		title := fmt.Sprintf("Cluster %d", id)
		for _, text := range clusters[id] {
			s.store.AddDocumentInsight(map[string]any{
				"document_title":   title,
				"key_findings":     text,
				"confidence_level": "High",
			})
		}
	}
}

// evaluate parses each stage's raw output into the knowledge store. A stage
// whose output yields no structured data contributes nothing; that is not an
// error.
func (s *Session) evaluate(outputs pipeline.Outputs) {
	if v, ok := pipeline.ExtractJSON(outputs[pipeline.StagePlan]); ok {
		if m, ok := pipeline.AsObject(v); ok {
			s.store.SetResearchPlan(m)
		}
	}

	if v, ok := pipeline.ExtractJSON(outputs[pipeline.StageClaims]); ok {
		for _, item := range asItemList(v, "claims") {
			s.store.AddWebClaim(item)
		}
	}

	if v, ok := pipeline.ExtractJSON(outputs[pipeline.StageInsights]); ok {
		if list, ok := pipeline.AsList(v); ok {
			for _, item := range list {
				s.store.AddDocumentInsight(item)
			}
		} else {
			s.store.AddDocumentInsight(v)
		}
	}

	s.evaluateConflicts(outputs[pipeline.StageConflicts])

	if report := strings.TrimSpace(outputs[pipeline.StageReport]); report != "" {
		s.reportDraft = report
	}
}

func (s *Session) evaluateConflicts(raw string) {
	v, ok := pipeline.ExtractJSON(raw)
	if !ok {
		return
	}
	m, ok := pipeline.AsObject(v)
	if !ok {
		return
	}
	if detected, _ := m["conflicts_detected"].(bool); !detected {
		return
	}
	// The declared flag alone triggers recursion, with or without parseable
	// detail records.
	s.store.DeclareConflicts()

	details, _ := m["conflict_details"].([]any)
	for _, d := range details {
		dm, ok := d.(map[string]any)
		if !ok {
			continue
		}

		issue, _ := dm["issue"].(string)
		if issue == "" {
			issue = "Unknown"
		}
		severity, _ := dm["severity"].(string)
		if severity == "" {
			severity = "Medium"
		}

		var sources []string
		if raw, ok := dm["conflicting_sources"].([]any); ok {
			for _, src := range raw {
				if str, ok := src.(string); ok {
					sources = append(sources, str)
				}
			}
		}

		s.store.RegisterConflict(issue, sources, severity)
	}
}

// finalize scores the accumulated evidence, stamps the plan, and assembles
// the final report with its confidence footer.
func (s *Session) finalize() {
	state := s.store.State()

	score := s.store.CalculateConfidence()
	s.store.AddReasoningStep(fmt.Sprintf("Final confidence score: %s%%", formatScore(score)))

	plan := state.ResearchPlan
	if plan == nil {
		plan = map[string]any{}
	}
	plan["system_confidence_score"] = score
	plan["confidence_scale"] = "0-100"
	s.store.SetResearchPlan(plan)

	footer := fmt.Sprintf("\n\n---\nSystem Confidence Score: %s%% (Calculated)\n", formatScore(score))
	s.store.SetFinalReport(s.reportDraft + footer)
}

// asItemList flattens a parsed value into its item list: an array is taken
// as-is, and an object is unwrapped through its named list field.
func asItemList(v any, field string) []any {
	if list, ok := pipeline.AsList(v); ok {
		return list
	}
	if m, ok := pipeline.AsObject(v); ok {
		if list, ok := m[field].([]any); ok {
			return list
		}
	}
	return nil
}

// formatScore renders a confidence score without trailing zeros, so 26.5
// prints as "26.5" and 80 as "80".
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
