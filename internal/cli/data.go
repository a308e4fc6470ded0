package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophdesk/internal/activity"
)

// Put stores value under key in the user's namespace.
func (a *App) Put(ctx context.Context, key, value string) error {
	if err := a.data.Put(ctx, key, []byte(value)); err != nil {
		return err
	}
	a.record(ctx, "put", key)
	a.println("Saved", key)
	return nil
}

// Get prints the value stored under key.
func (a *App) Get(ctx context.Context, key string) error {
	value, ok, err := a.data.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Not found:", key)
		return nil
	}
	a.println(string(value))
	return nil
}

// Delete removes key from the user's namespace.
func (a *App) Delete(ctx context.Context, key string) error {
	if err := a.data.Delete(ctx, key); err != nil {
		return err
	}
	a.record(ctx, "delete", key)
	a.println("Deleted", key)
	return nil
}

// Keys lists the user's keys starting with prefix. History entries are
// hidden unless prefix asks for them.
func (a *App) Keys(ctx context.Context, prefix string) error {
	keys, err := a.data.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}

	showHistory := strings.HasPrefix(prefix, activity.KeyPrefix)
	n := 0
	for _, k := range keys {
		if !showHistory && strings.HasPrefix(k, activity.KeyPrefix) {
			continue
		}
		a.println(k)
		n++
	}
	if n == 0 {
		a.println("No keys")
	}
	return nil
}

// History prints the user's activity log, oldest first.
func (a *App) History(ctx context.Context) error {
	entries, err := a.history.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.println("No history")
		return nil
	}
	for _, e := range entries {
		line := e.Timestamp + "  " + e.Operation
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		a.println(line)
	}
	return nil
}
