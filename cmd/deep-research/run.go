// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/flow"
	"github.com/pdiddy/deep-research/internal/index"
	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/internal/websearch"
	"github.com/pdiddy/deep-research/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full research session for a query",
	Long: `Run executes the complete research loop: web search and PDF corpus
collection, generative synthesis, conflict-driven recursion, and
finalization. Artifacts are written to the output directory:
final_report.txt, reasoning_trace.json, conflicts.json, summary.json,
and evidence.yaml.

Web search requires a Serper API key (secret file serper-api-key or
SERPER_API_KEY); without one the session runs on document evidence alone.
The Gemini API key (gemini-api-key or GEMINI_API_KEY) is required.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().String("query", "", "research question (required)")
	runCmd.Flags().Int("max-recursions", 0, "override the recursion bound")
	runCmd.Flags().String("input-dir", "", "PDF corpus directory")
	runCmd.Flags().String("output-dir", "", "artifact output directory")
	runCmd.Flags().String("model", "", "generation model identifier")
	_ = runCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg := sessionConfig(cmd)

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	if cfg.Pipeline.APIKey == "" {
		return fmt.Errorf("gemini API key is required (secret gemini-api-key or GEMINI_API_KEY)")
	}
	backend, err := pipeline.NewGeminiBackend(ctx, cfg.Pipeline)
	if err != nil {
		return err
	}

	deps := flow.Deps{
		Pipeline: backend,
		Scorer:   websearch.NewCredibilityScorer(),
		Logger:   logger,
	}

	if cfg.Search.SerperAPIKey != "" {
		deps.Web = &websearch.SerperBackend{
			Client:   &http.Client{Timeout: cfg.Search.Timeout},
			APIKey:   cfg.Search.SerperAPIKey,
			Progress: os.Stderr,
		}
	} else {
		fmt.Fprintln(os.Stderr, "No Serper API key; web search disabled.")
	}

	ix, err := index.Open(cfg.Index.Path, cfg.Index.TopK)
	if err != nil {
		return fmt.Errorf("opening chunk index: %w", err)
	}
	defer ix.Close()
	deps.Index = ix

	embedder, err := index.NewGenAIEmbedder(ctx, cfg.Pipeline.APIKey, cfg.Pipeline.EmbeddingModel)
	if err != nil {
		return err
	}
	deps.Clusterer = index.NewEmbeddingClusterer(embedder, cfg.Index.MaxClusters)

	session, err := flow.NewSession(cfg, deps)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Session %s: %s\n", session.ID, cfg.Query)
	if err := session.Run(ctx); err != nil {
		return err
	}

	state := session.State()
	fmt.Printf("Confidence score: %.2f\n", state.ConfidenceScore)
	fmt.Printf("Recursions taken: %d\n", state.RecursionCount)
	fmt.Printf("Artifacts written to %s\n", cfg.Output.Dir)
	return nil
}

// sessionConfig assembles the session configuration from flags, the config
// file, secrets, and the environment, in that precedence order.
func sessionConfig(cmd *cobra.Command) types.SessionConfig {
	query, _ := cmd.Flags().GetString("query")
	maxRecursions, _ := cmd.Flags().GetInt("max-recursions")
	inputDir, _ := cmd.Flags().GetString("input-dir")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	model, _ := cmd.Flags().GetString("model")

	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("documents.input_dir", "input_pdfs")
	viper.SetDefault("index.path", filepath.Join("index", "chunks.db"))
	viper.SetDefault("index.top_k", index.DefaultTopK)
	viper.SetDefault("index.max_clusters", index.DefaultMaxClusters)
	viper.SetDefault("output.dir", "output")

	cfg := types.SessionConfig{
		Query:         query,
		MaxRecursions: maxRecursions,
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: "deep-research/" + version,
			},
			MaxResults:   viper.GetInt("search.max_results"),
			SerperAPIKey: secretDefault("serper-api-key", "SERPER_API_KEY", viper.GetString("search.serper_api_key")),
		},
		Documents: types.DocumentsConfig{
			InputDir:     viper.GetString("documents.input_dir"),
			ChunkSize:    viper.GetInt("documents.chunk_size"),
			ChunkOverlap: viper.GetInt("documents.chunk_overlap"),
			MinChunkLen:  viper.GetInt("documents.min_chunk_len"),
		},
		Index: types.IndexConfig{
			Path:        viper.GetString("index.path"),
			TopK:        viper.GetInt("index.top_k"),
			MaxClusters: viper.GetInt("index.max_clusters"),
		},
		Pipeline: types.AIConfig{
			Model:          viper.GetString("pipeline.model"),
			EmbeddingModel: viper.GetString("pipeline.embedding_model"),
			APIKey:         secretDefault("gemini-api-key", "GEMINI_API_KEY", viper.GetString("pipeline.api_key")),
			MaxRetries:     viper.GetInt("pipeline.max_retries"),
		},
		Output: types.OutputConfig{
			Dir: viper.GetString("output.dir"),
		},
	}

	if inputDir != "" {
		cfg.Documents.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if model != "" {
		cfg.Pipeline.Model = model
	}
	return cfg
}

// newLogger builds the session logger: structured JSON to logs/run.log plus
// console output on stderr.
func newLogger() (*zap.Logger, error) {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return nil, fmt.Errorf("creating logs directory: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{filepath.Join("logs", "run.log"), "stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
