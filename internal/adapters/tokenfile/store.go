// Package tokenfile persists the session token in a single file under the
// user's config directory. The file is the one piece of state shared
// across every shelfctl process; absence means logged out.
package tokenfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a file-backed token store. All writers (login, logout, the API
// client's 401 hook) must go through the same store so external watchers
// observe a consistent path.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a token store at path, creating parent directories as
// needed.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("token file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the token file location.
func (s *Store) Path() string { return s.path }

// Get returns the stored token, or empty string when logged out.
func (s *Store) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set persists the token. The write is atomic (temp file + rename) so a
// concurrent reader never observes a partial token.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write token: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp token file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod token file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename token file: %w", err)
	}
	return nil
}

// Clear removes the token file. Clearing an already-cleared store is a
// no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
