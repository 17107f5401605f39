package pipeline

import (
	"reflect"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
		ok   bool
	}{
		{
			name: "direct object",
			raw:  `{"a": 1}`,
			want: map[string]any{"a": 1.0},
			ok:   true,
		},
		{
			name: "direct array",
			raw:  `[1, 2]`,
			want: []any{1.0, 2.0},
			ok:   true,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"a\": 1}\n```",
			want: map[string]any{"a": 1.0},
			ok:   true,
		},
		{
			name: "embedded object",
			raw:  `Here is the result: {"a":1} done`,
			want: map[string]any{"a": 1.0},
			ok:   true,
		},
		{
			name: "embedded array",
			raw:  `The claims are: [{"claim":"x"}] thanks`,
			want: []any{map[string]any{"claim": "x"}},
			ok:   true,
		},
		{
			name: "garbage",
			raw:  "no structure here at all",
			ok:   false,
		},
		{
			name: "unbalanced",
			raw:  "start { never closes",
			ok:   false,
		},
		{
			name: "empty",
			raw:  "   ",
			ok:   false,
		},
		{
			name: "invalid span",
			raw:  "prefix {not json} suffix",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONGreedySpan(t *testing.T) {
	// The span runs from the first opener to the last matching closer.
	raw := `note {"outer": {"inner": 1}} trailing`
	got, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("expected a parse")
	}
	want := map[string]any{"outer": map[string]any{"inner": 1.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v", got)
	}
}
