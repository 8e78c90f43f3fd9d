package inmemstore

import (
	"sync"

	"github.com/tmwangi/kazi/core"
)

// Store is an in-memory core.KVStore for tests and local runs
// without a database.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ core.KVStore = (*Store)(nil)

func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Load(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

func (s *Store) Save(entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range entries {
		cp := make([]byte, len(value))
		copy(cp, value)
		s.entries[key] = cp
	}
	return nil
}
