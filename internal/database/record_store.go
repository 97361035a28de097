package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Collection keys. Each key holds one JSON array.
const (
	KeySalesTeam        = "salesTeam"
	KeyLeads            = "leads"
	KeyOnboardedLeaders = "onboardedLeaders"
	KeyCheckIns         = "checkIns"
)

// CollectionKeys lists every collection the tracker persists
var CollectionKeys = []string{KeySalesTeam, KeyLeads, KeyOnboardedLeaders, KeyCheckIns}

// RecordStore is a durable key/value store of serialized collections.
// Put replaces the whole value for a key.
type RecordStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Keys() ([]string, error)
}

// CorruptRecordError is returned when a stored collection cannot be decoded.
// The stored bytes are left untouched.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("stored collection %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// Load reads the collection stored under key. A missing key yields def.
func Load[T any](store RecordStore, key string, def []T) ([]T, error) {
	data, found, err := store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return def, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &CorruptRecordError{Key: key, Err: err}
	}
	if items == nil {
		return def, nil
	}
	return items, nil
}

// Save serializes items and replaces the collection stored under key
func Save[T any](store RecordStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := store.Put(key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// ClearCollections resets each key to an empty collection. Unknown keys are rejected
// before anything is written.
func ClearCollections(store RecordStore, keys []string) error {
	for _, key := range keys {
		if !isCollectionKey(key) {
			return fmt.Errorf("unknown collection %q", key)
		}
	}
	for _, key := range keys {
		if err := Save(store, key, []json.RawMessage{}); err != nil {
			return err
		}
	}
	return nil
}

// CountRecords returns the number of records stored under key. A corrupt
// collection is reported as an error rather than counted.
func CountRecords(store RecordStore, key string) (int, error) {
	items, err := Load(store, key, []json.RawMessage{})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func isCollectionKey(key string) bool {
	for _, k := range CollectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SQLRecordStore keeps collections in the record_store table
type SQLRecordStore struct {
	db  DB
	now func() time.Time
}

// NewSQLRecordStore creates a record store backed by db
func NewSQLRecordStore(db DB) *SQLRecordStore {
	return &SQLRecordStore{db: db, now: time.Now}
}

// EnsureSchema creates the record_store table when it does not exist
func (s *SQLRecordStore) EnsureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS record_store (
			record_key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create record_store table: %w", err)
	}
	return nil
}

// Get returns the raw value stored under key
func (s *SQLRecordStore) Get(key string) ([]byte, bool, error) {
	var value string
	query := s.db.Rebind(`SELECT value FROM record_store WHERE record_key = ?`)

	err := s.db.Get(&value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Put upserts the value stored under key
func (s *SQLRecordStore) Put(key string, value []byte) error {
	query := s.db.Rebind(`
		INSERT INTO record_store (record_key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (record_key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`)

	_, err := s.db.Exec(query, key, string(value), s.now().UTC())
	return err
}

// Keys lists stored keys in lexical order
func (s *SQLRecordStore) Keys() ([]string, error) {
	keys := []string{}
	err := s.db.Select(&keys, `SELECT record_key FROM record_store ORDER BY record_key`)
	if err != nil {
		return nil, err
	}
	return keys, nil
}
