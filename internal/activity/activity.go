// Package activity keeps a per-user history of what was done through the
// client. Entries are namespaced entities, so each user only ever sees their
// own history.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/scoped"
	"github.com/google/uuid"
)

// KeyPrefix is the entity-key prefix of activity entries.
const KeyPrefix = "activity:"

// timeLayout is fixed width, so keys sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Entry is a single activity log entry.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"` // RFC3339 with microseconds, UTC.
	Operation string `json:"op"`
	Detail    string `json:"detail,omitempty"`
}

// Time parses Timestamp.
func (e Entry) Time() (time.Time, error) {
	return time.Parse(timeLayout, e.Timestamp)
}

type Log struct {
	store *scoped.Store
	now   func() time.Time
}

func NewLog(store *scoped.Store) *Log {
	return &Log{store: store, now: time.Now}
}

// Record appends an entry for op to the active user's history. It fails
// with common.ErrNotAuthenticated when nobody is logged in.
func (l *Log) Record(ctx context.Context, op, detail string) error {
	// Version 7 IDs are monotonic within the process, which keeps entries
	// recorded within the same microsecond in order.
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("record %s: %w", op, err)
	}

	entry := Entry{
		ID:        id.String(),
		Timestamp: l.now().UTC().Format(timeLayout),
		Operation: op,
		Detail:    detail,
	}

	key := KeyPrefix + entry.Timestamp + ":" + entry.ID
	if err := scoped.PutJSON(ctx, l.store, key, entry); err != nil {
		return fmt.Errorf("record %s: %w", op, err)
	}
	return nil
}

// List returns the active user's history, oldest first. Malformed entries
// are skipped. Without a session the history is empty.
func (l *Log) List(ctx context.Context) ([]Entry, error) {
	keys, err := l.store.ListKeys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		e, ok, err := scoped.GetJSON[Entry](ctx, l.store, k)
		if err != nil || !ok {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
