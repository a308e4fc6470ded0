// Package storagetest provides storage.Store doubles for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
)

// Flaky wraps a Store and fails every call with common.ErrStorageUnavailable
// while it is down, the way a disabled or full medium would.
type Flaky struct {
	storage.Store
	down atomic.Bool
}

func NewFlaky(inner storage.Store) *Flaky {
	return &Flaky{Store: inner}
}

// SetDown switches the failure mode on or off.
func (f *Flaky) SetDown(down bool) {
	f.down.Store(down)
}

func (f *Flaky) err(op string) error {
	if f.down.Load() {
		return fmt.Errorf("%w: %s: medium disabled", common.ErrStorageUnavailable, op)
	}
	return nil
}

func (f *Flaky) Get(ctx context.Context, key string) ([]byte, error) {
	if err := f.err("get"); err != nil {
		return nil, err
	}
	return f.Store.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key string, value []byte) error {
	if err := f.err("set"); err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

func (f *Flaky) Create(ctx context.Context, key string, value []byte) error {
	if err := f.err("create"); err != nil {
		return err
	}
	return f.Store.Create(ctx, key, value)
}

func (f *Flaky) Delete(ctx context.Context, key string) error {
	if err := f.err("delete"); err != nil {
		return err
	}
	return f.Store.Delete(ctx, key)
}

func (f *Flaky) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := f.err("keys"); err != nil {
		return nil, err
	}
	return f.Store.Keys(ctx, prefix)
}

func (f *Flaky) Batch(ctx context.Context, ops ...storage.Op) error {
	if err := f.err("batch"); err != nil {
		return err
	}
	return f.Store.Batch(ctx, ops...)
}

func (f *Flaky) Ping(ctx context.Context) error {
	if err := f.err("ping"); err != nil {
		return err
	}
	return f.Store.Ping(ctx)
}
