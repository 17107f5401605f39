// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus extracts text from local PDF documents and splits it into
// identified, page-attributed chunks for indexing and ingestion.
package corpus

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Chunk is one extracted span of a document, ready for ingestion.
type Chunk struct {
	ChunkID    string `json:"chunk_id" yaml:"chunk_id"`
	SourceFile string `json:"source_file" yaml:"source_file"`
	Page       int    `json:"page" yaml:"page"`
	Text       string `json:"text" yaml:"text"`
}

// Document holds the full text and chunks extracted from one PDF.
type Document struct {
	Path   string  `json:"path" yaml:"path"`
	Text   string  `json:"text" yaml:"text"`
	Chunks []Chunk `json:"chunks" yaml:"chunks"`
}

// ChunkID builds the stable chunk identifier for the idx-th chunk of a file:
// "<basename>_chunk_<idx>".
func ChunkID(path string, idx int) string {
	return fmt.Sprintf("%s_chunk_%d", filepath.Base(path), idx)
}

// ExtractPDF reads one PDF, extracts text per page, and chunks it. Chunk
// indices run across the whole document so ids stay unique within the file.
func ExtractPDF(path string, chunkSize, overlap, minLen int) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	doc := Document{Path: path}
	idx := 0

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}

		doc.Text += pageText

		for _, text := range ChunkSentences(pageText, chunkSize, overlap, minLen) {
			doc.Chunks = append(doc.Chunks, Chunk{
				ChunkID:    ChunkID(path, idx),
				SourceFile: path,
				Page:       pageNum,
				Text:       text,
			})
			idx++
		}
	}

	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, fmt.Errorf("no extractable text in %s", path)
	}

	return doc, nil
}

// ListPDFs returns the sorted *.pdf paths under dir. A missing directory is
// not an error; it yields an empty list.
func ListPDFs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
