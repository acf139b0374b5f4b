package testutil

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"todo/internal/storage"
)

// RepositoryContract exercises the behavior every storage.Repository must share.
// repo must start empty.
func RepositoryContract(t *testing.T, repo storage.Repository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Get(ctx, storage.KeyTasks); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get on empty repo: expected ErrNotFound, got %v", err)
	}

	if err := repo.Put(ctx, storage.KeyTasks, []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := repo.Put(ctx, storage.KeyUsers, []byte(`[{"id":"1","email":"a@b.c","name":"A"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := repo.Get(ctx, storage.KeyTasks)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Get: expected %q, got %q", `[]`, got)
	}

	// Overwrite replaces the previous value.
	if err := repo.Put(ctx, storage.KeyTasks, []byte(`[{"id":"x"}]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = repo.Get(ctx, storage.KeyTasks)
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(got) != `[{"id":"x"}]` {
		t.Errorf("Get after overwrite: got %q", got)
	}

	keys, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{storage.KeyTasks, storage.KeyUsers}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("List: expected %v, got %v", want, keys)
	}

	if err := repo.Delete(ctx, storage.KeyTasks); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, storage.KeyTasks); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after Delete: expected ErrNotFound, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := repo.Delete(ctx, storage.KeyTasks); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}
