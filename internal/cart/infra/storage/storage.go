// Package storage selects a cart storage driver from configuration and
// decorates it with retries.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/infra/file"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	"github.com/dwikikusuma/storefront/internal/cart/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/cart/infra/redis"
	"github.com/dwikikusuma/storefront/internal/cart/infra/s3"
	"github.com/dwikikusuma/storefront/internal/cart/infra/sqlite"
	"github.com/dwikikusuma/storefront/pkg/config"
	pg "github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/dwikikusuma/storefront/pkg/retry"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverRedis    Driver = "redis"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Open builds the storage named by cfg.Driver (default file).
func Open(ctx context.Context, cfg config.CartConfig) (app.Storage, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFile
	}
	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverFile:
		return file.New(cfg.FileRoot)
	case DriverRedis:
		return redis.New(cfg.RedisAddr)
	case DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres cart driver requires a dsn")
		}
		db, err := pg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s := postgres.NewCartStorage(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,

			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown cart storage driver %s", driver)
	}
}

// Retrying retries Save and Ping under a policy. Load is passed through:
// hydration reads once and falls back to an empty cart.
type Retrying struct {
	next   app.Storage
	policy retry.Policy
	log    *slog.Logger
}

func WithRetry(next app.Storage, policy retry.Policy, log *slog.Logger) *Retrying {
	if log == nil {
		log = slog.Default()
	}
	return &Retrying{next: next, policy: policy, log: log}
}

func (r *Retrying) Load(ctx context.Context, key string) ([]byte, error) {
	return r.next.Load(ctx, key)
}

func (r *Retrying) Save(ctx context.Context, key string, data []byte) error {
	return retry.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.next.Save(ctx, key, data)
	}, r.notify("save", key))
}

func (r *Retrying) Ping(ctx context.Context) error {
	return retry.Do(ctx, r.policy, r.next.Ping, r.notify("ping", ""))
}

func (r *Retrying) Close() error {
	return r.next.Close()
}

func (r *Retrying) notify(op, key string) retry.Notify {
	return func(err error, attempt int, wait time.Duration) {
		r.log.Warn("cart storage retry",
			slog.String("op", op),
			slog.String("key", key),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("err", err),
		)
	}
}
