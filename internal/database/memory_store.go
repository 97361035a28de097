package database

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chipchip/sgl-tracker/internal/config"
)

// MemoryRecordStore is a thread-safe in-memory RecordStore. Values are copied
// on the way in and out so callers cannot mutate stored state.
type MemoryRecordStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryRecordStore creates an empty in-memory store
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{items: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key
func (s *MemoryRecordStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Put replaces the value stored under key
func (s *MemoryRecordStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Keys lists stored keys in lexical order
func (s *MemoryRecordStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// OpenRecordStore builds the store selected by cfg.Driver. The returned DB is
// nil for the memory driver; callers close it when non-nil.
func OpenRecordStore(cfg config.DatabaseConfig) (RecordStore, DB, error) {
	if cfg.Driver == config.DriverMemory {
		return NewMemoryRecordStore(), nil, nil
	}

	db, err := NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	store := NewSQLRecordStore(db)
	if err := store.EnsureSchema(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to prepare record store: %w", err)
	}
	return store, db, nil
}
