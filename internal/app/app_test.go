package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

func TestOpen_FileBackendPersists(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.New(dir)
	ctx := context.Background()

	svc, closer, err := Open(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	u, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTask(ctx, u.ID, service.NewTask{Title: "Pay rent"}); err != nil {
		t.Fatal(err)
	}
	closer.Close()

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "todo_app_tasks.json")); err != nil {
		t.Errorf("expected tasks file: %v", err)
	}

	// A second process sees the same session and tasks.
	svc, closer, err = Open(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	cur, err := svc.CurrentUser(ctx)
	if err != nil || cur == nil || cur.ID != u.ID {
		t.Fatalf("expected restored session, got %+v, %v", cur, err)
	}
	list, err := svc.ListTasks(ctx, u.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("expected 1 task, got %d (%v)", len(list), err)
	}
}

func TestOpen_Memory(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.Backend = config.BackendMemory

	svc, closer, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if cur, err := svc.CurrentUser(context.Background()); err != nil || cur != nil {
		t.Errorf("expected empty store, got %+v, %v", cur, err)
	}
}

func TestOpenRepository_Errors(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	cfg.Backend = "sqlite"
	if _, _, err := OpenRepository(context.Background(), cfg, logging.Discard()); err == nil {
		t.Error("expected unknown backend error")
	}

	// A data dir that is a regular file cannot be opened.
	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0600)
	cfg.Backend = config.BackendFile
	cfg.DataDir = blocker
	_, _, err := OpenRepository(context.Background(), cfg, logging.Discard())
	if !errors.Is(err, service.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}
