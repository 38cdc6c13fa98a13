// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists per-document entity counts in SQLite so repeated
// runs over an unchanged corpus skip recognition. Entries are keyed by the
// SHA-256 of the document text and the recognizer name.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/filing-cloud/pkg/types"
)

// Store manages the entity cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS doc_entities (
			doc_hash TEXT NOT NULL,
			recognizer TEXT NOT NULL,
			counts TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (doc_hash, recognizer)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_doc_entities_recognizer ON doc_entities(recognizer)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Hash returns the cache key for a document text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached counts for a document. The boolean is false on a
// cache miss.
func (s *Store) Get(ctx context.Context, recognizer, text string) (types.Frequencies, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT counts FROM doc_entities WHERE doc_hash = ? AND recognizer = ?`,
		Hash(text), recognizer,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	counts := types.Frequencies{}
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		return nil, false, fmt.Errorf("decoding cached counts: %w", err)
	}
	return counts, true, nil
}

// Put stores the counts for a document, replacing any previous entry.
func (s *Store) Put(ctx context.Context, recognizer, text string, counts types.Frequencies) error {
	if counts == nil {
		counts = types.Frequencies{}
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encoding counts: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO doc_entities (doc_hash, recognizer, counts, created_at) VALUES (?, ?, ?, ?)`,
		Hash(text), recognizer, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached documents for a recognizer.
func (s *Store) Len(ctx context.Context, recognizer string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM doc_entities WHERE recognizer = ?`, recognizer,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
