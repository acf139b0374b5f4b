// Package storage defines the key-value repository every store persists through,
// plus the JSON codec used for the persisted collections.
package storage

import (
	"context"
	"errors"
	"time"
)

// Persisted keys. Values are UTF-8 JSON documents.
const (
	KeySession     = "todo_app_user"
	KeyUsers       = "todo_app_users"
	KeyTasks       = "todo_app_tasks"
	KeyCredentials = "todo_app_credentials"
)

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = errors.New("key not found")

// Repository is a swappable key-value backend.
type Repository interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys in lexical order.
	List(ctx context.Context) ([]string, error)
}

// WithLatency wraps repo so every call first pauses for d, the way a remote
// backend would. The pause ignores cancellation: once issued, a call always
// reaches the wrapped repository. A zero or negative d returns repo unchanged.
func WithLatency(repo Repository, d time.Duration) Repository {
	if d <= 0 {
		return repo
	}
	return &latencyRepo{next: repo, delay: d}
}

type latencyRepo struct {
	next  Repository
	delay time.Duration
}

func (r *latencyRepo) pause() {
	time.Sleep(r.delay)
}

func (r *latencyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	r.pause()
	return r.next.Get(ctx, key)
}

func (r *latencyRepo) Put(ctx context.Context, key string, value []byte) error {
	r.pause()
	return r.next.Put(ctx, key, value)
}

func (r *latencyRepo) Delete(ctx context.Context, key string) error {
	r.pause()
	return r.next.Delete(ctx, key)
}

func (r *latencyRepo) List(ctx context.Context) ([]string, error) {
	r.pause()
	return r.next.List(ctx)
}
