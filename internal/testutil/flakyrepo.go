// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"todo/internal/storage"
	"todo/internal/storage/memstore"
)

// ErrInjected is the default error returned by FlakyRepo when failing.
var ErrInjected = errors.New("injected failure")

// FlakyRepo wraps a storage.Repository with per-operation error injection
// and call counting.
type FlakyRepo struct {
	Next storage.Repository

	mu sync.Mutex

	// Error injection for testing. A non-nil error makes every call of that
	// operation fail until cleared.
	GetErr    error
	PutErr    error
	DeleteErr error
	ListErr   error

	// PutErrKeys fails Put only for the listed keys.
	PutErrKeys map[string]error

	Gets    int
	Puts    int
	Deletes int
}

// NewFlakyRepo wraps a fresh in-memory store.
func NewFlakyRepo() *FlakyRepo {
	return &FlakyRepo{Next: memstore.New(), PutErrKeys: make(map[string]error)}
}

// FailPuts makes every Put fail with err (nil clears).
func (f *FlakyRepo) FailPuts(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutErr = err
}

// FailGets makes every Get fail with err (nil clears).
func (f *FlakyRepo) FailGets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetErr = err
}

// PutCount returns the number of Put calls so far, failed ones included.
func (f *FlakyRepo) PutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Puts
}

// Get implements storage.Repository.
func (f *FlakyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	f.Gets++
	err := f.GetErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Next.Get(ctx, key)
}

// Put implements storage.Repository.
func (f *FlakyRepo) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.Puts++
	err := f.PutErr
	if keyErr, ok := f.PutErrKeys[key]; ok && keyErr != nil {
		err = keyErr
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Next.Put(ctx, key, value)
}

// Delete implements storage.Repository.
func (f *FlakyRepo) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.Deletes++
	err := f.DeleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Next.Delete(ctx, key)
}

// List implements storage.Repository.
func (f *FlakyRepo) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	err := f.ListErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Next.List(ctx)
}

// Clock is a settable time source for stores under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock fixed at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
