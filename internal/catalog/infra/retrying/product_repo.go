// Package retrying wraps a ProductRepo so transient failures are retried.
package retrying

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/retry"
)

type ProductRepo struct {
	next   app.ProductRepo
	policy retry.Policy
	log    *slog.Logger
}

func NewProductRepo(next app.ProductRepo, policy retry.Policy, log *slog.Logger) *ProductRepo {
	if log == nil {
		log = slog.Default()
	}
	return &ProductRepo{next: next, policy: policy, log: log}
}

func (r *ProductRepo) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, r.policy, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, app.ErrNotFound) || errors.Is(err, app.ErrInvalidInput) {
			return retry.Permanent(err)
		}
		return err
	}, func(err error, attempt int, wait time.Duration) {
		r.log.Warn("catalog operation failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("err", err),
		)
	})
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := r.do(ctx, "create", func(ctx context.Context) error {
		var err error
		out, err = r.next.Create(ctx, p)
		return err
	})
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var out domain.Product
	err := r.do(ctx, "get", func(ctx context.Context) error {
		var err error
		out, err = r.next.Get(ctx, id)
		return err
	})
	return out, err
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var (
		out  []domain.Product
		next string
	)
	err := r.do(ctx, "list", func(ctx context.Context) error {
		var err error
		out, next, err = r.next.List(ctx, query, limit, cursor)
		return err
	})
	return out, next, err
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := r.do(ctx, "update", func(ctx context.Context) error {
		var err error
		out, err = r.next.Update(ctx, p)
		return err
	})
	return out, err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.do(ctx, "delete", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}
