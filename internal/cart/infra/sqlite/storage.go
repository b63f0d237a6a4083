// Package sqlite stores carts in a single SQLite table keyed by cart key.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

const schema = `CREATE TABLE IF NOT EXISTS carts (
	cart_key   TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type Storage struct {
	db *sql.DB
}

// Open creates the database file and schema if they do not exist yet.
func Open(ctx context.Context, path string) (*Storage, error) {
	if path == "" {
		path = "storefront.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "create sqlite dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create carts table")
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM carts WHERE cart_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select cart %s", key)
	}
	return payload, nil
}

func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carts (cart_key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(cart_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, data)
	if err != nil {
		return errors.Wrapf(err, "upsert cart %s", key)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
