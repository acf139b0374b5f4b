// Package app wires configuration to a storage backend and the stores.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/account"
	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/storage"
	"todo/internal/storage/filestore"
	"todo/internal/storage/memstore"
	"todo/internal/storage/pgstore"
	"todo/internal/tasks"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenRepository returns the backend selected by cfg, wrapped with the
// configured latency. The closer releases backend resources.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Repository, io.Closer, error) {
	var (
		repo   storage.Repository
		closer io.Closer = nopCloser{}
	)

	switch cfg.Backend {
	case config.BackendMemory:
		repo = memstore.New()
	case config.BackendFile:
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, &service.StorageError{Op: "open", Err: err}
		}
		repo = fs
	case config.BackendPostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, &service.StorageError{Op: "open", Err: err}
		}
		repo, closer = pg, pg
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	logger.Debug("storage opened", "backend", cfg.Backend, "latency", cfg.Latency)
	return storage.WithLatency(repo, cfg.Latency), closer, nil
}

// Open builds the account and task stores over the configured backend.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, io.Closer, error) {
	repo, closer, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc := service.Compose(
		account.New(repo, logger.With("component", "account")),
		tasks.New(repo, logger.With("component", "tasks")),
	)
	return svc, closer, nil
}
