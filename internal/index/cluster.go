// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/genai"
)

// DefaultMaxClusters bounds how many thematic groups retrieval fragments
// form.
const DefaultMaxClusters = 5

const defaultEmbeddingModel = "gemini-embedding-001"

// Similarity above which a fragment joins an existing group rather than
// opening a new one.
const clusterThreshold = 0.75

// Embedder turns texts into vectors for thematic grouping.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Clusterer groups document fragments into thematic clusters.
type Clusterer interface {
	Cluster(ctx context.Context, texts []string) (map[int][]string, error)
}

// EmbeddingClusterer groups fragments by embedding similarity: each fragment
// joins the closest existing centroid above the threshold, or opens a new
// group while fewer than maxClusters exist. The assignment is deterministic
// in input order.
type EmbeddingClusterer struct {
	embedder    Embedder
	maxClusters int
}

// NewEmbeddingClusterer builds a clusterer over the given embedder.
func NewEmbeddingClusterer(embedder Embedder, maxClusters int) *EmbeddingClusterer {
	if maxClusters <= 0 {
		maxClusters = DefaultMaxClusters
	}
	return &EmbeddingClusterer{embedder: embedder, maxClusters: maxClusters}
}

// Cluster groups texts into at most maxClusters thematic groups.
func (c *EmbeddingClusterer) Cluster(ctx context.Context, texts []string) (map[int][]string, error) {
	if len(texts) == 0 {
		return map[int][]string{}, nil
	}
	if len(texts) == 1 {
		return map[int][]string{0: texts}, nil
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding fragments: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	clusters := map[int][]string{}
	var centroids [][]float32

	for i, text := range texts {
		best, bestSim := -1, -1.0
		for j, centroid := range centroids {
			if sim := cosine(vectors[i], centroid); sim > bestSim {
				best, bestSim = j, sim
			}
		}

		if best >= 0 && (bestSim >= clusterThreshold || len(centroids) >= c.maxClusters) {
			clusters[best] = append(clusters[best], text)
			continue
		}

		id := len(centroids)
		centroids = append(centroids, vectors[i])
		clusters[id] = append(clusters[id], text)
	}

	return clusters, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// GenAIEmbedder produces embeddings through the Gemini API with the
// clustering task type.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder creates an embedder from an API key and optional model.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if model == "" {
		model = defaultEmbeddingModel
	}
	return &GenAIEmbedder{client: client, model: model}, nil
}

// Embed returns one vector per input text.
func (e *GenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "CLUSTERING",
	})
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
