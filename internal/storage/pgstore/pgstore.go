// Package pgstore implements storage.Repository on PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"todo/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS todo_kv (
	key        text PRIMARY KEY,
	value      text NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
`

// Store keeps every key as a row in todo_kv.
type Store struct {
	db *sql.DB
}

// Open connects to dsn, pings it and creates the table if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("pgstore: database url is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: open db: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}

	s := New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool. The caller owns db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the key-value table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("pgstore: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements storage.Repository.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM todo_kv WHERE key = $1;`
	var value string
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

// Put implements storage.Repository.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO todo_kv (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = now();
`
	_, err := s.db.ExecContext(ctx, q, key, string(value))
	return err
}

// Delete implements storage.Repository.
func (s *Store) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM todo_kv WHERE key = $1;`
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}

// List implements storage.Repository.
func (s *Store) List(ctx context.Context) ([]string, error) {
	const q = `SELECT key FROM todo_kv ORDER BY key;`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
