// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web-search collaborator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of organic results ingested per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SerperAPIKey authenticates against the Serper search API.
	SerperAPIKey string `json:"serper_api_key,omitempty" yaml:"serper_api_key,omitempty"`
}

// DocumentsConfig holds settings for local PDF extraction and chunking.
type DocumentsConfig struct {
	// InputDir is the directory scanned for *.pdf files (default "input_pdfs").
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// ChunkSize is the target chunk length in characters (default 500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the carried-over tail length between chunks (default 50).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// MinChunkLen drops chunks at or below this length (default 50).
	MinChunkLen int `json:"min_chunk_len" yaml:"min_chunk_len"`
}

// IndexConfig holds settings for the durable chunk index.
type IndexConfig struct {
	// Path is the SQLite database file (default "index/chunks.db").
	Path string `json:"path" yaml:"path"`

	// TopK is the number of fragments returned per retrieval query (default 5).
	TopK int `json:"top_k" yaml:"top_k"`

	// MaxClusters bounds how many thematic groups retrieval fragments form (default 5).
	MaxClusters int `json:"max_clusters" yaml:"max_clusters"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the generation model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// EmbeddingModel is the embedding model used for clustering
	// (e.g. "gemini-embedding-001").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// OutputConfig holds settings for session artifacts.
type OutputConfig struct {
	// Dir is the directory final artifacts are written to (default "output").
	Dir string `json:"dir" yaml:"dir"`
}

// SessionConfig groups all stage configurations for one research session.
type SessionConfig struct {
	// Query is the research question. Required.
	Query string `json:"query" yaml:"query"`

	// MaxRecursions overrides the default recursion bound when positive.
	MaxRecursions int `json:"max_recursions" yaml:"max_recursions"`

	Search    SearchConfig    `json:"search" yaml:"search"`
	Documents DocumentsConfig `json:"documents" yaml:"documents"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Pipeline  AIConfig        `json:"pipeline" yaml:"pipeline"`
	Output    OutputConfig    `json:"output" yaml:"output"`
}
