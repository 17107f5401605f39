// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains the durable document-chunk index backing semantic
// retrieval. Chunks live in an embedded SQLite database with an FTS5 mirror
// kept in sync by triggers; ingestion is idempotent by chunk id, so re-runs
// over the same corpus are cheap no-ops.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deep-research/internal/corpus"
)

// DefaultTopK is the number of fragments returned per retrieval query.
const DefaultTopK = 5

// Index wraps the chunk database.
type Index struct {
	db   *sql.DB
	topK int
}

// Open opens or creates the chunk index at path, creating the schema if it
// does not exist.
func Open(path string, topK int) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening chunk index: %w", err)
	}

	if topK <= 0 {
		topK = DefaultTopK
	}

	ix := &Index{db: db, topK: topK}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return ix, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			source_file TEXT NOT NULL,
			page INTEGER,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_file)`,
	}

	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := ix.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chunks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE chunks_fts USING fts5(text, content=chunks, content_rowid=rowid)`,
			`CREATE TRIGGER chunks_ai AFTER INSERT ON chunks BEGIN
				INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER chunks_ad AFTER DELETE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER chunks_au AFTER UPDATE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := ix.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Add inserts document chunks. Chunks whose id already exists are ignored.
// Returns the number of newly inserted chunks.
func (ix *Index) Add(ctx context.Context, chunks []corpus.Chunk) (int, error) {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO chunks (chunk_id, source_file, page, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range chunks {
		res, err := stmt.ExecContext(ctx, c.ChunkID, c.SourceFile, c.Page, c.Text)
		if err != nil {
			return inserted, fmt.Errorf("inserting chunk %s: %w", c.ChunkID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing: %w", err)
	}
	return inserted, nil
}

// Count returns the number of indexed chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n)
	return n, err
}

// Query returns the topK chunks ranked by full-text relevance to the query
// text. A query with no indexable tokens returns no fragments.
func (ix *Index) Query(ctx context.Context, query string, topK int) ([]corpus.Chunk, error) {
	if topK <= 0 {
		topK = ix.topK
	}

	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT c.chunk_id, c.source_file, c.page, c.text
		 FROM chunks_fts
		 JOIN chunks c ON c.rowid = chunks_fts.rowid
		 WHERE chunks_fts MATCH ?
		 ORDER BY chunks_fts.rank
		 LIMIT ?`, match, topK)
	if err != nil {
		return nil, fmt.Errorf("querying chunk index: %w", err)
	}
	defer rows.Close()

	var results []corpus.Chunk
	for rows.Next() {
		var c corpus.Chunk
		if err := rows.Scan(&c.ChunkID, &c.SourceFile, &c.Page, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

// ftsQuery turns free text into an FTS5 OR-query over its alphanumeric
// tokens, so punctuation in the research question cannot break the match
// syntax.
func ftsQuery(query string) string {
	tokens := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}
	for i, tok := range tokens {
		tokens[i] = `"` + tok + `"`
	}
	return strings.Join(tokens, " OR ")
}
