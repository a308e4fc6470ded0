// Package memory provides an in-process storage.Store.
//
// It backs the ephemeral session medium (its lifetime is the lifetime of the
// value) and serves as the persistent medium in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
)

// Store is a storage.Store over a map guarded by a RWMutex. Values are
// copied on the way in and out, so callers never share buffers with it.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or common.ErrorNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrorNotFound)
	}
	return clone(v), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = clone(value)
	return nil
}

// Create stores value under key unless the key exists, in which case it
// returns common.ErrorAlreadyExists.
func (s *Store) Create(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		return fmt.Errorf("key %q: %w", key, common.ErrorAlreadyExists)
	}
	s.data[key] = clone(value)
	return nil
}

// Delete removes key. A missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Keys returns the sorted keys starting with prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Batch applies ops under one lock. Unknown op kinds are rejected before
// anything is applied.
func (s *Store) Batch(ctx context.Context, ops ...storage.Op) error {
	for _, op := range ops {
		if op.Kind != storage.OpSet && op.Kind != storage.OpDelete && op.Kind != storage.OpDeletePrefix {
			return fmt.Errorf("unknown batch op %d", op.Kind)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case storage.OpSet:
			s.data[op.Key] = clone(op.Value)
		case storage.OpDelete:
			delete(s.data, op.Key)
		case storage.OpDeletePrefix:
			for k := range s.data {
				if strings.HasPrefix(k, op.Key) {
					delete(s.data, k)
				}
			}
		}
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Clear drops every key, the way a host discards tab-scoped storage when the
// tab closes.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return append([]byte(nil), b...)
}
