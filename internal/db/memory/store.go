package memory

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/kailas-cloud/unidash/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store is an in-process db.Store for local runs and tests.
// Scan patterns use path.Match glob syntax, which covers the "*" and "?"
// patterns the service issues.
type Store struct {
	mutex sync.RWMutex
	table map[string]entry
	now   func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{table: make(map[string]entry), now: time.Now}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops every key.
func (s *Store) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table = make(map[string]entry)
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Get retrieves a copy of the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.lookup(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(e.value), nil
}

// Set stores a copy of value at key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table[key] = entry{value: slices.Clone(value)}
	return nil
}

// SetWithTTL stores a copy of value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &db.Error{Op: db.OpSet, Err: fmt.Errorf("invalid ttl %s", ttl)}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table[key] = entry{value: slices.Clone(value), expiresAt: s.now().Add(ttl)}
	return nil
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.table, key)
	return nil
}

// Exists checks if a live key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, ok := s.lookup(key)
	return ok, nil
}

// Scan returns the live keys matching pattern, sorted.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	for k := range s.table {
		if _, live := s.lookup(k); !live {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// lookup returns the entry at key unless it has expired. Callers hold the mutex.
func (s *Store) lookup(key string) (entry, bool) {
	e, ok := s.table[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		return entry{}, false
	}
	return e, true
}
