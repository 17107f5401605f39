package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pdiddy/deep-research/internal/corpus"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "index", "chunks.db"), 5)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func sampleChunks() []corpus.Chunk {
	return []corpus.Chunk{
		{ChunkID: "a.pdf_chunk_0", SourceFile: "a.pdf", Page: 1, Text: "Quantization reduces model memory usage significantly"},
		{ChunkID: "a.pdf_chunk_1", SourceFile: "a.pdf", Page: 2, Text: "Training throughput improves with mixed precision"},
		{ChunkID: "b.pdf_chunk_0", SourceFile: "b.pdf", Page: 1, Text: "Distillation transfers knowledge to smaller models"},
	}
}

func TestAddAndCount(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()

	n, err := ix.Add(ctx, sampleChunks())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("want 3 inserted, got %d", n)
	}

	count, err := ix.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("want 3 chunks, got %d", count)
	}
}

func TestAddIdempotent(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()

	if _, err := ix.Add(ctx, sampleChunks()); err != nil {
		t.Fatal(err)
	}
	n, err := ix.Add(ctx, sampleChunks())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("re-adding should insert nothing, got %d", n)
	}

	count, _ := ix.Count(ctx)
	if count != 3 {
		t.Fatalf("want 3 chunks after re-add, got %d", count)
	}
}

func TestQueryMatchesRelevantChunk(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()

	if _, err := ix.Add(ctx, sampleChunks()); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(ctx, "quantization memory", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no results for matching query")
	}
	if results[0].ChunkID != "a.pdf_chunk_0" {
		t.Errorf("best match = %s", results[0].ChunkID)
	}
}

func TestQueryPunctuationSafe(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()

	if _, err := ix.Add(ctx, sampleChunks()); err != nil {
		t.Fatal(err)
	}

	// Raw punctuation would break FTS5 MATCH syntax if passed through.
	if _, err := ix.Query(ctx, `what about "quantization"? (memory!)`, 5); err != nil {
		t.Fatalf("punctuated query failed: %v", err)
	}
}

func TestQueryTopKLimit(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()

	var chunks []corpus.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, corpus.Chunk{
			ChunkID:    corpus.ChunkID("c.pdf", i),
			SourceFile: "c.pdf",
			Page:       i + 1,
			Text:       "repeated retrieval content about transformers",
		})
	}
	if _, err := ix.Add(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(ctx, "transformers", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("want 4 results, got %d", len(results))
	}
}

func TestQueryEmptyQuery(t *testing.T) {
	ix := testIndex(t)

	results, err := ix.Query(context.Background(), "?!...", 5)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Fatalf("tokenless query should return nothing, got %v", results)
	}
}
