package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/medirisk/assessment-client/internal/domain/entities"
)

// Store is the process-wide client-persisted identity store: a JSON file
// holding the bearer credential produced by login/signup. It is written only
// by login, logout and the gateway's authorization-rejection handler; any
// component may read it to gate access.
type Store struct {
	path string

	mu      sync.RWMutex
	current *entities.Credentials
}

// NewStore creates a store backed by the file at path. The file is loaded
// lazily by Load; a missing file simply means no identity.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted identity, if any
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds entities.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if creds.Token != "" {
		s.current = &creds
	}
	return nil
}

// Token returns the current bearer credential, if any
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", false
	}
	return s.current.Token, true
}

// Current returns the full persisted identity, if any
func (s *Store) Current() (entities.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return entities.Credentials{}, false
	}
	return *s.current, true
}

// Save persists a new identity, replacing any previous one
func (s *Store) Save(creds entities.Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &creds
	return nil
}

// Invalidate clears all client-persisted identity state
func (s *Store) Invalidate() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
