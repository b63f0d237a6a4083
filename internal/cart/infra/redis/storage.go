// Package redis keeps each cart in a Redis hash under the field "cart".
package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

const field = "cart"

type Storage struct {
	client *redis.Client
}

// New accepts either a redis:// URL or a bare host:port.
func New(addr string) (*Storage, error) {
	if addr == "" {
		return nil, errors.New("redis address required")
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}
	return &Storage{client: redis.NewClient(opts)}, nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis HGET %s", key)
	}
	return b, nil
}

func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.HSet(ctx, key, field, data).Err(); err != nil {
		return errors.Wrapf(err, "redis HSET %s", key)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis PING")
	}
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
