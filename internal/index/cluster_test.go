package index

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"
)

// mockEmbedder returns deterministic vectors derived from the text hash, so
// identical texts always land in the same cluster.
type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = deterministicVector(t, 8)
	}
	return out, nil
}

func deterministicVector(text string, dim int) []float32 {
	sum := sha256.Sum256([]byte(text))
	v := make([]float32, dim)
	for i := 0; i < dim; i++ {
		bits := binary.BigEndian.Uint32(sum[(i*4)%28:])
		v[i] = float32(bits%1000)/1000.0 - 0.5
	}
	return v
}

func TestClusterEmpty(t *testing.T) {
	c := NewEmbeddingClusterer(&mockEmbedder{}, 5)
	got, err := c.Cluster(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("want no clusters, got %v", got)
	}
}

func TestClusterSingleText(t *testing.T) {
	c := NewEmbeddingClusterer(&mockEmbedder{}, 5)
	got, err := c.Cluster(context.Background(), []string{"only fragment"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("single text should form one cluster: %v", got)
	}
}

func TestClusterIdenticalTextsGroup(t *testing.T) {
	c := NewEmbeddingClusterer(&mockEmbedder{}, 5)
	texts := []string{"same fragment", "same fragment", "same fragment"}

	got, err := c.Cluster(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("identical texts should share a cluster, got %d clusters", len(got))
	}
	if len(got[0]) != 3 {
		t.Fatalf("cluster 0 holds %d texts", len(got[0]))
	}
}

func TestClusterRespectsMaxClusters(t *testing.T) {
	c := NewEmbeddingClusterer(&mockEmbedder{}, 2)
	texts := []string{"alpha content", "beta content", "gamma content", "delta content", "epsilon content"}

	got, err := c.Cluster(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > 2 {
		t.Fatalf("cluster count %d exceeds bound 2", len(got))
	}

	total := 0
	for _, members := range got {
		total += len(members)
	}
	if total != len(texts) {
		t.Fatalf("texts lost in clustering: %d of %d", total, len(texts))
	}
}

func TestClusterEmbedderFailure(t *testing.T) {
	c := NewEmbeddingClusterer(&mockEmbedder{err: errors.New("quota exceeded")}, 5)
	if _, err := c.Cluster(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("want error from failing embedder")
	}
}
