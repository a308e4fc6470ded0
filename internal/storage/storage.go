// Package storage defines the host storage primitives the security layer runs
// on: a flat key/value space with prefix listing.
//
// Two media are used. The persistent medium holds credential records and
// namespaced user data and survives restarts. The ephemeral medium holds the
// active session and is discarded with the process (or client) that owns it.
// Both satisfy Store, so either can be swapped for a fake in tests.
package storage

import "context"

// Store is a key/value store with lexicographically ordered keys.
//
// Implementations return common.ErrorNotFound from Get for absent keys and
// wrap medium failures (closed database, I/O errors, full disk) with
// common.ErrStorageUnavailable.
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or overwrites key.
	Set(ctx context.Context, key string, value []byte) error

	// Create inserts key only if it is absent and returns
	// common.ErrorAlreadyExists otherwise.
	Create(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns a sorted snapshot of all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Batch applies ops atomically: either all of them take effect or none.
	Batch(ctx context.Context, ops ...Op) error

	// Ping reports whether the medium is currently usable.
	Ping(ctx context.Context) error
}

// OpKind selects what an Op does.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
	OpDeletePrefix
)

// Op is one mutation inside a Batch. For OpDeletePrefix, Key is the prefix.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

// SetOp returns an Op that stores value under key.
func SetOp(key string, value []byte) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

// DeleteOp returns an Op that removes key.
func DeleteOp(key string) Op {
	return Op{Kind: OpDelete, Key: key}
}

// DeletePrefixOp returns an Op that removes every key starting with prefix.
func DeletePrefixOp(prefix string) Op {
	return Op{Kind: OpDeletePrefix, Key: prefix}
}
