package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type sqliteCache struct {
	db *sql.DB
}

func NewSQLiteCache(db *sql.DB) Cache {
	return &sqliteCache{db: db}
}

func (r *sqliteCache) Get(ctx context.Context, key string) ([]byte, error) {
	query := "SELECT value FROM cache_entries WHERE key = ?"
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (r *sqliteCache) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, key, string(value), time.Now().UTC())
	return err
}

func (r *sqliteCache) Delete(ctx context.Context, key string) error {
	query := "DELETE FROM cache_entries WHERE key = ?"
	_, err := r.db.ExecContext(ctx, query, key)
	return err
}
