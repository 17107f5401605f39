package knowledge

import "testing"

func TestAuthorityBoost(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want float64
	}{
		{"academic arxiv", "https://arxiv.org/abs/2301.07041", 0.15},
		{"academic nature", "https://www.nature.com/articles/x", 0.15},
		{"academic ieee", "https://ieeexplore.ieee.org/document/1", 0.15},
		{"official docs", "https://learn.microsoft.com/en-us/azure", 0.12},
		{"official cloud docs", "https://cloud.google.com/vertex-ai/docs", 0.12},
		{"openai matches docs tier before lab tier", "https://openai.com/research", 0.12},
		{"lab blog", "https://www.anthropic.com/engineering/post", 0.08},
		{"medium penalty", "https://medium.com/@someone/post", -0.05},
		{"blog substring penalty", "https://blog.example.io/post", -0.05},
		{"neutral host", "https://example.com/page", 0.0},
		{"empty", "", 0.0},
		{"unparseable", "http://%zz", 0.0},
		{"no host", "just-some-text", 0.0},
		{"case folded", "https://ARXIV.org/abs/1", 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorityBoost(tt.url); got != tt.want {
				t.Errorf("AuthorityBoost(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
