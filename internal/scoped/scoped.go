// Package scoped implements the ScopedDataStore: a key/value view of the
// persistent medium restricted to the namespace of the active session.
package scoped

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
)

// Resolver yields the username owning the current namespace, or
// common.ErrNotAuthenticated. *session.Manager satisfies it.
type Resolver interface {
	ActiveUser(ctx context.Context) (string, error)
}

// Store resolves the namespace on every call, so a logout or a
// revalidation failure takes effect immediately.
type Store struct {
	db       storage.Store
	resolver Resolver
}

func NewStore(db storage.Store, resolver Resolver) *Store {
	return &Store{db: db, resolver: resolver}
}

// Get returns the value stored under key in the active namespace. Without a
// session it reports a miss rather than an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	user, ok, err := s.reader(ctx)
	if err != nil || !ok {
		return nil, false, err
	}

	value, err := s.db.Get(ctx, common.DataKey(user, key))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key in the active namespace.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	user, err := s.resolver.ActiveUser(ctx)
	if err != nil {
		return err
	}
	if err := s.db.Set(ctx, common.DataKey(user, key), value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key from the active namespace. Deleting a missing key is
// not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	user, err := s.resolver.ActiveUser(ctx)
	if err != nil {
		return err
	}
	if err := s.db.Delete(ctx, common.DataKey(user, key)); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ListKeys returns the sorted entity keys of the active namespace starting
// with prefix, with the namespace stripped. The slice is a snapshot taken at
// call time.
func (s *Store) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	user, ok, err := s.reader(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}

	ns := common.NamespacePrefix(user)
	keys, err := s.db.Keys(ctx, ns+prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	res := make([]string, 0, len(keys))
	for _, k := range keys {
		res = append(res, strings.TrimPrefix(k, ns))
	}
	return res, nil
}

// reader resolves the namespace for read operations, treating a missing
// session as an empty namespace.
func (s *Store) reader(ctx context.Context) (string, bool, error) {
	user, err := s.resolver.ActiveUser(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			return "", false, nil
		}
		return "", false, err
	}
	return user, true, nil
}

// GetJSON decodes the entity stored under key into a T.
func GetJSON[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var v T
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON[T any](ctx context.Context, s *Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
