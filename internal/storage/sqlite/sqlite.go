// Package sqlite implements the persistent storage.Store on an SQLite file
// through the pure-Go modernc.org/sqlite driver.
//
// All values live in a single kv(key, value) table created by the embedded
// goose migrations. Several processes may open the same file; SQLite
// serialises their writes and the last write wins.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/dbx"
	"github.com/dmitrijs2005/gophdesk/internal/storage"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const busyTimeoutPragma = "_pragma=busy_timeout(5000)"

var errUnknownOp = errors.New("unknown batch op")

// Store is the persistent storage.Store. Medium failures are wrapped with
// common.ErrStorageUnavailable.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the database at path, applies migrations
// and returns a ready Store. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?" + busyTimeoutPragma
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open", path, err)
	}
	// One connection: SQLite has a single writer anyway, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate", path, err)
	}

	return NewStore(db), nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrorNotFound)
	}
	if err != nil {
		return nil, unavailable("get", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := set(ctx, s.db, key, value); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Create inserts key unless it exists. The check and the insert are one
// statement, so concurrent registrations cannot both succeed.
func (s *Store) Create(ctx context.Context, key string, value []byte) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, nonNil(value))
	if err != nil {
		return unavailable("create", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("create", key, err)
	}
	if n == 0 {
		return fmt.Errorf("key %q: %w", key, common.ErrorAlreadyExists)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Keys returns the keys starting with prefix in byte order.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM kv
		WHERE substr(key, 1, length(?1)) = ?1
		ORDER BY key
	`, prefix)
	if err != nil {
		return nil, unavailable("list", prefix, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, unavailable("scan", prefix, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate", prefix, err)
	}

	return keys, nil
}

// Batch applies ops in one transaction.
func (s *Store) Batch(ctx context.Context, ops ...storage.Op) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, op := range ops {
			var err error
			switch op.Kind {
			case storage.OpSet:
				err = set(ctx, tx, op.Key, op.Value)
			case storage.OpDelete:
				_, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, op.Key)
			case storage.OpDeletePrefix:
				_, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE substr(key, 1, length(?1)) = ?1`, op.Key)
			default:
				return fmt.Errorf("%w %d", errUnknownOp, op.Kind)
			}
			if err != nil {
				return unavailable("batch", op.Key, err)
			}
		}
		return nil
	})
	if err == nil || errors.Is(err, errUnknownOp) || errors.Is(err, common.ErrStorageUnavailable) {
		return err
	}
	return unavailable("batch", "", err)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", "", err)
	}
	return nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, nonNil(value))
	return err
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: failed to %s kv[%s]: %w", common.ErrStorageUnavailable, op, key, err)
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
