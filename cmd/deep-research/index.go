// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/corpus"
	"github.com/pdiddy/deep-research/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the document-chunk index",
}

var indexAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Extract and index the PDFs in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("input-dir")
		dbPath, _ := cmd.Flags().GetString("db")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		overlap, _ := cmd.Flags().GetInt("chunk-overlap")
		minLen, _ := cmd.Flags().GetInt("min-chunk-len")

		paths, err := corpus.ListPDFs(dir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintf(os.Stderr, "No PDFs found in %s.\n", dir)
			return nil
		}

		ix, err := index.Open(dbPath, 0)
		if err != nil {
			return err
		}
		defer ix.Close()

		total := 0
		for _, path := range paths {
			doc, err := corpus.ExtractPDF(path, chunkSize, overlap, minLen)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
				continue
			}
			n, err := ix.Add(cmd.Context(), doc.Chunks)
			if err != nil {
				return fmt.Errorf("indexing %s: %w", path, err)
			}
			fmt.Printf("%s: %d chunks (%d new)\n", filepath.Base(path), len(doc.Chunks), n)
			total += n
		}

		count, err := ix.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d new chunks; %d total.\n", total, count)
		return nil
	},
}

var indexQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the index for relevant chunks",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		dbPath, _ := cmd.Flags().GetString("db")
		topK, _ := cmd.Flags().GetInt("top-k")

		ix, err := index.Open(dbPath, topK)
		if err != nil {
			return err
		}
		defer ix.Close()

		chunks, err := ix.Query(cmd.Context(), query, topK)
		if err != nil {
			return err
		}

		for _, c := range chunks {
			fmt.Printf("%s (page %d)\n  %s\n", c.ChunkID, c.Page, c.Text)
		}
		fmt.Fprintf(os.Stderr, "%d chunks\n", len(chunks))
		return nil
	},
}

func init() {
	defaultDB := filepath.Join("index", "chunks.db")

	indexAddCmd.Flags().String("input-dir", "input_pdfs", "PDF corpus directory")
	indexAddCmd.Flags().String("db", defaultDB, "index database path")
	indexAddCmd.Flags().Int("chunk-size", corpus.DefaultChunkSize, "target chunk length in characters")
	indexAddCmd.Flags().Int("chunk-overlap", corpus.DefaultChunkOverlap, "carried-over tail length between chunks")
	indexAddCmd.Flags().Int("min-chunk-len", corpus.DefaultMinChunkLen, "minimum retained chunk length")

	indexQueryCmd.Flags().String("query", "", "query text")
	indexQueryCmd.Flags().String("db", defaultDB, "index database path")
	indexQueryCmd.Flags().Int("top-k", index.DefaultTopK, "number of chunks to return")
	_ = indexQueryCmd.MarkFlagRequired("query")

	indexCmd.AddCommand(indexAddCmd, indexQueryCmd)
	rootCmd.AddCommand(indexCmd)
}
