// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers structured data from raw generative-model text. It
// strips whitespace and code-fence markers, attempts a direct parse, then
// falls back to the first balanced object-or-array span (greedy: first
// opener to last matching closer). The second return value is false when no
// structured data could be recovered; that is not an error, and callers
// treat it as "skip this stage's contribution".
func ExtractJSON(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	if s == "" {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, true
	}

	span, ok := balancedSpan(s)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedSpan returns the greedy substring from the first '{' or '[' to the
// last corresponding closer.
func balancedSpan(s string) (string, bool) {
	start := -1
	var closer byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, closer = i, '}'
			break
		}
		if s[i] == '[' {
			start, closer = i, ']'
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// AsObject narrows an extracted value to a JSON object.
func AsObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsList narrows an extracted value to a JSON array.
func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}
