package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/ports"
)

// FileStore appends history entries to a jsonl file, oldest first.
type FileStore struct {
	path     string
	capacity int
	mu       sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, capacity int) *FileStore {
	return &FileStore{path: path, capacity: capacity}
}

// Save implements ports.HistoryRepository.
func (f *FileStore) Save(entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		file.Close()
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return f.compactLocked()
}

// compactLocked rewrites the file without the oldest entries beyond capacity.
func (f *FileStore) compactLocked() error {
	if f.capacity <= 0 {
		return nil
	}
	entries, err := f.readLocked()
	if err != nil || len(entries) <= f.capacity {
		return err
	}
	keep := entries[len(entries)-f.capacity:]

	var buf bytes.Buffer
	for _, entry := range keep {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		buf.Write(append(data, '\n'))
	}
	return os.WriteFile(f.path, buf.Bytes(), domain.SecureFilePermissions)
}

// Entries loads up to limit entries, newest first (best-effort: malformed
// lines are skipped).
func (f *FileStore) Entries(limit int) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	entries, err := f.readLocked()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *FileStore) readLocked() ([]domain.HistoryEntry, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []domain.HistoryEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ExportJSON copies the entries, newest first, to dest as jsonl.
func (f *FileStore) ExportJSON(dest string) error {
	entries, err := f.Entries(0)
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func writeJSONL(dest string, entries []domain.HistoryEntry) error {
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			return err
		}
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return w.Flush()
}

var _ ports.HistoryRepository = (*FileStore)(nil)
