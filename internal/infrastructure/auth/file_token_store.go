// Package auth stores the bearer token between runs and inspects its claims.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/ports"
)

// FileTokenStore keeps the token in a 0600 file. Reads are served from
// memory after the first load.
type FileTokenStore struct {
	path string

	mu     sync.RWMutex
	loaded bool
	token  string
}

// NewFileTokenStore returns a store backed by path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the backing file.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Token returns the stored token, "" when none is stored.
func (s *FileTokenStore) Token() (string, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.token, nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read token: %w", err)
	}
	s.token = strings.TrimSpace(string(raw))
	s.loaded = true
	return s.token, nil
}

// SetToken replaces the stored token.
func (s *FileTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), domain.SecureFilePermissions); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// ClearToken removes the token file.
func (s *FileTokenStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	s.token = ""
	s.loaded = true
	return nil
}

var _ ports.TokenStore = (*FileTokenStore)(nil)
