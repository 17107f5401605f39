// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"regexp"
	"strings"
)

// Chunking defaults: target size and overlap in characters, and the minimum
// length below which a chunk is discarded as noise.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultMinChunkLen  = 50
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	sentenceEndRe  = regexp.MustCompile(`([.!?])\s+`)
	sentenceMarker = "\x00"
)

// ChunkSentences splits text into chunks of roughly chunkSize characters,
// breaking on sentence boundaries and carrying an overlap-length tail from
// each chunk into the next. Chunks at or below minLen are dropped.
func ChunkSentences(text string, chunkSize, overlap, minLen int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	if minLen < 0 {
		minLen = DefaultMinChunkLen
	}

	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current string

	for _, sentence := range sentences {
		if len(current)+len(sentence) <= chunkSize {
			current += " " + sentence
			continue
		}

		chunks = append(chunks, strings.TrimSpace(current))

		// Slice the overlap tail on a rune boundary so multibyte text never
		// splits mid-sequence.
		tail := current
		if r := []rune(tail); len(r) > overlap {
			tail = string(r[len(r)-overlap:])
		}
		current = tail + " " + sentence
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	var out []string
	for _, c := range chunks {
		if len(c) > minLen {
			out = append(out, c)
		}
	}
	return out
}

// splitSentences breaks text after terminal punctuation followed by space.
func splitSentences(text string) []string {
	marked := sentenceEndRe.ReplaceAllString(text, "$1"+sentenceMarker)
	parts := strings.Split(marked, sentenceMarker)

	var sentences []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
