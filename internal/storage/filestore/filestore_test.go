package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"todo/internal/storage/filestore"
	"todo/internal/testutil"
)

func TestStore_Contract(t *testing.T) {
	s, err := filestore.New(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	testutil.RepositoryContract(t, s)
}

func TestStore_FilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := filestore.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Put(context.Background(), "todo_app_user", []byte(`{}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "todo_app_user.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("expected dir mode 0700, got %o", perm)
	}
}

func TestStore_ListSkipsTempAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := filestore.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	os.WriteFile(filepath.Join(dir, ".todo_app_tasks-123.tmp"), []byte("partial"), 0600)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0600)
	if err := s.Put(context.Background(), "todo_app_tasks", []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	keys, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0] != "todo_app_tasks" {
		t.Errorf("expected [todo_app_tasks], got %v", keys)
	}
}

func TestStore_RejectsPathKeys(t *testing.T) {
	s, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/b", ".."} {
		if err := s.Put(context.Background(), key, []byte(`{}`)); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}
