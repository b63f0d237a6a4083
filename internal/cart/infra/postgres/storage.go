// Package postgres stores serialized carts in a Postgres table.
package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

const Schema = `CREATE TABLE IF NOT EXISTS carts (
	cart_key   TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type CartStorage struct {
	db *sql.DB
}

func NewCartStorage(db *sql.DB) *CartStorage {
	return &CartStorage{db: db}
}

// Migrate creates the carts table if it is missing.
func (r *CartStorage) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return errors.Wrap(err, "create carts table")
	}
	return nil
}

func (r *CartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM carts WHERE cart_key = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select cart %s", key)
	}
	return payload, nil
}

// Save overwrites the whole payload. Concurrent writers resolve to the last
// committed upsert.
func (r *CartStorage) Save(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (cart_key, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (cart_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		key, data)
	if err != nil {
		return errors.Wrapf(err, "upsert cart %s", key)
	}
	return nil
}

func (r *CartStorage) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *CartStorage) Close() error {
	return r.db.Close()
}
