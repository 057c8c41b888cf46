// Package history keeps the in-memory, most-recent-first list of successful
// queries and the current selection.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/budgetq/internal/domain"
)

// Store holds history entries newest first. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	entries  []domain.HistoryEntry
	selected string
	capacity int
	now      func() time.Time
	newID    func() (string, error)
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates an empty store. capacity <= 0 keeps every entry.
func NewStore(capacity int, opts ...Option) *Store {
	s := &Store{
		capacity: capacity,
		now:      time.Now,
		newID:    newUUIDv7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ids sort lexically in creation order.
func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Record prepends a new entry holding a private copy of results.
func (s *Store) Record(text string, results *domain.ResultPayload) (domain.HistoryEntry, error) {
	id, err := s.newID()
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	entry := domain.HistoryEntry{
		ID:        id,
		Text:      text,
		Timestamp: s.now(),
	}
	if results != nil {
		clone := results.Clone()
		entry.Results = &clone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]domain.HistoryEntry{entry}, s.entries...)
	s.evictLocked()
	return entry.Clone(), nil
}

func (s *Store) evictLocked() {
	if s.capacity <= 0 || len(s.entries) <= s.capacity {
		return
	}
	for _, dropped := range s.entries[s.capacity:] {
		if dropped.ID == s.selected {
			s.selected = ""
		}
	}
	s.entries = s.entries[:s.capacity]
}

// Select marks id as selected. Unknown ids leave the selection unchanged.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// SelectedID returns the selected id, or "" when nothing is selected.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the selected entry.
func (s *Store) Selected() (domain.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(s.selected)
	if i < 0 {
		return domain.HistoryEntry{}, false
	}
	return s.entries[i].Clone(), true
}

// Get looks an entry up by id.
func (s *Store) Get(id string) (domain.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.HistoryEntry{}, false
	}
	return s.entries[i].Clone(), true
}

// Entries returns copies of all entries, newest first.
func (s *Store) Entries() []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.HistoryEntry, len(s.entries))
	for i, entry := range s.entries {
		out[i] = entry.Clone()
	}
	return out
}

// Len reports the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes every entry and the selection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.selected = ""
}

// Restore replaces the contents with persisted entries, which must already be
// ordered newest first. The selection is reset.
func (s *Store) Restore(entries []domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]domain.HistoryEntry, len(entries))
	for i, entry := range entries {
		s.entries[i] = entry.Clone()
	}
	s.selected = ""
	s.evictLocked()
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, entry := range s.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
