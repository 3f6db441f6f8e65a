package etalon

import (
	"sync"

	"github.com/pilosa/etalon/stats"
)

// Store maps canonical keys to their accumulated stats. Keys are kept in the
// order they were first recorded. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]*stats.Stats
	keys    []string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]*stats.Stats)}
}

// Record adds a sample of ms milliseconds under key, creating the record on
// first use.
func (s *Store) Record(key string, ms int64) {
	// fast path: the record exists. Holding the read lock while adding keeps
	// Reset from swapping the map out from under the sample.
	s.mu.RLock()
	if st, ok := s.records[key]; ok {
		st.Add(ms)
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	// re-check, another writer may have created it in between
	st, ok := s.records[key]
	if !ok {
		st = stats.NewStats()
		s.records[key] = st
		s.keys = append(s.keys, key)
	}
	st.Add(ms)
}

// Lookup returns a snapshot of the record for key.
func (s *Store) Lookup(key string) (stats.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.records[key]
	if !ok {
		return stats.Snapshot{}, false
	}
	return st.Snapshot(), true
}

// Keys returns the recorded keys in first-recorded order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Each calls fn with a snapshot of every record in first-recorded order.
// Each record is consistent on its own; records are not captured together.
func (s *Store) Each(fn func(key string, snap stats.Snapshot)) {
	for _, key := range s.Keys() {
		snap, ok := s.Lookup(key)
		if !ok {
			// reset in between
			continue
		}
		fn(key, snap)
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Reset drops every record.
func (s *Store) Reset() {
	s.mu.Lock()
	s.records = make(map[string]*stats.Stats)
	s.keys = nil
	s.mu.Unlock()
}
