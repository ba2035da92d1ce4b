package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/storage"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var (
	_ storage.KV          = (*Store)(nil)
	_ storage.BatchWriter = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const upsertSQL = `
INSERT INTO kv_store (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// Store is a KV persisted in a single SQLite file.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the SQLite file at path. ":memory:" gives a
// throwaway store.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("[sqlitekv Open] %w: %w", apperrors.ErrStorage, err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("[sqlitekv Open] %w: %w", apperrors.ErrStorage, err)
	}
	// One connection keeps ":memory:" a single database and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("[sqlitekv Open] create schema: %w: %w", apperrors.ErrStorage, err)
	}
	log.Debug().Str("path", path).Msg("session storage opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[sqlitekv Get] %s: %w: %w", key, apperrors.ErrStorage, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("[sqlitekv Set] %s: %w: %w", key, apperrors.ErrStorage, err)
	}
	return nil
}

// SetMany writes every entry in one transaction.
func (s *Store) SetMany(ctx context.Context, entries []storage.Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[sqlitekv SetMany] begin: %w: %w", apperrors.ErrStorage, err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, upsertSQL, e.Key, e.Value); err != nil {
			return fmt.Errorf("[sqlitekv SetMany] %s: %w: %w", e.Key, apperrors.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[sqlitekv SetMany] commit: %w: %w", apperrors.ErrStorage, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("[sqlitekv Delete] %s: %w: %w", key, apperrors.ErrStorage, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store`); err != nil {
		return fmt.Errorf("[sqlitekv Clear] %w: %w", apperrors.ErrStorage, err)
	}
	return nil
}

// Keys lists stored keys in name order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, `SELECT key FROM kv_store ORDER BY key`); err != nil {
		return nil, fmt.Errorf("[sqlitekv Keys] %w: %w", apperrors.ErrStorage, err)
	}
	return keys, nil
}
