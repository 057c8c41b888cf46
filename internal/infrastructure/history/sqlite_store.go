// Package history persists query history entries between runs.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/ports"
)

// SQLiteStore persists history in a SQLite database. When the database cannot
// be opened it degrades to a FileStore next to it.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	capacity int
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path. capacity <= 0 keeps
// every entry.
func NewSQLiteStore(path string, capacity int) *SQLiteStore {
	store := &SQLiteStore{path: path, capacity: capacity}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		store.fallback = NewFileStore(fallbackPath(path), capacity)
		return store
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		store.fallback = NewFileStore(fallbackPath(path), capacity)
		return store
	}
	store.db = db
	if err := store.init(); err != nil {
		_ = db.Close()
		store.db = nil
		store.fallback = NewFileStore(fallbackPath(path), capacity)
	}
	return store
}

func fallbackPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl"
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS queries (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		results TEXT
	);`)
	return err
}

// Degraded reports whether the store fell back to the jsonl file.
func (s *SQLiteStore) Degraded() bool {
	return s.db == nil
}

// Save inserts entry and evicts the oldest rows beyond capacity.
func (s *SQLiteStore) Save(entry domain.HistoryEntry) error {
	if s.db == nil {
		return s.fallback.Save(entry)
	}
	results, err := encodeResults(entry.Results)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO queries (id, text, timestamp, results) VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.Text,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		results,
	); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	if s.capacity > 0 {
		if _, err := tx.Exec(`DELETE FROM queries WHERE rowid NOT IN
			(SELECT rowid FROM queries ORDER BY rowid DESC LIMIT ?)`, s.capacity); err != nil {
			return fmt.Errorf("evict history: %w", err)
		}
	}
	return tx.Commit()
}

// Entries returns up to limit entries, newest first. limit <= 0 returns all.
func (s *SQLiteStore) Entries(limit int) ([]domain.HistoryEntry, error) {
	if s.db == nil {
		return s.fallback.Entries(limit)
	}
	query := "SELECT id, text, timestamp, results FROM queries ORDER BY rowid DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var (
			entry   domain.HistoryEntry
			ts      string
			results sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Text, &ts, &results); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = t
		}
		if results.Valid && results.String != "" {
			var payload domain.ResultPayload
			if err := json.Unmarshal([]byte(results.String), &payload); err == nil {
				entry.Results = &payload
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM queries")
	return err
}

// ExportJSON writes every entry, newest first, to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	entries, err := s.Entries(0)
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Path returns the database path, or the jsonl path when degraded.
func (s *SQLiteStore) Path() string {
	if s.db == nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func encodeResults(results *domain.ResultPayload) (interface{}, error) {
	if results == nil {
		return nil, nil
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return string(raw), nil
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
