// Package memory implements an in-process Ledger Store. It backs tests and
// the "memory" store backend, and can inject failures to exercise the
// engine's degraded paths.
package memory

import (
	"context"
	"sort"
	"sync"
)

// Store is a mutex-guarded map of keys to text values.
type Store struct {
	mu   sync.RWMutex
	data map[string]string

	// Injected failures, returned by the matching operation when non-nil.
	getErr    error
	setErr    error
	removeErr error

	gets int
	sets int
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get implements ledger.Store.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements ledger.Store.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

// Remove implements ledger.Store.
func (s *Store) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeErr != nil {
		return s.removeErr
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Close is a no-op so Store satisfies the closable backends contract.
func (s *Store) Close() error {
	return nil
}

// FailGets makes every Get return err (nil clears it).
func (s *Store) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailSets makes every Set return err (nil clears it).
func (s *Store) FailSets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// FailRemoves makes every Remove return err (nil clears it).
func (s *Store) FailRemoves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeErr = err
}

// Raw returns the stored value without counting or failing.
func (s *Store) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Put stores a raw value without counting or failing. Used to seed state.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Counts returns how many Get and Set calls reached the store.
func (s *Store) Counts() (gets, sets int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gets, s.sets
}
