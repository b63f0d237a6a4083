package retrying

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	"github.com/dwikikusuma/storefront/pkg/retry"
)

type flakyRepo struct {
	app.ProductRepo
	failures int
	calls    int
}

func (f *flakyRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	f.calls++
	if f.calls <= f.failures {
		return domain.Product{}, errors.New("connection reset")
	}
	return f.ProductRepo.Get(ctx, id)
}

func instant(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts}
}

func TestRetryingGet(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewProductRepo()
	p, err := inner.Create(ctx, domain.Product{Title: "Lamp", Category: "home"})
	require.NoError(t, err)

	t.Run("transient failures -> retried", func(t *testing.T) {
		flaky := &flakyRepo{ProductRepo: inner, failures: 2}
		got, err := NewProductRepo(flaky, instant(3), nil).Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lamp", got.Title)
		assert.Equal(t, 3, flaky.calls)
	})

	t.Run("attempts exhausted -> last error", func(t *testing.T) {
		flaky := &flakyRepo{ProductRepo: inner, failures: 5}
		_, err := NewProductRepo(flaky, instant(3), nil).Get(ctx, p.ID)
		require.EqualError(t, err, "connection reset")
		assert.Equal(t, 3, flaky.calls)
	})

	t.Run("not found -> no retry", func(t *testing.T) {
		flaky := &flakyRepo{ProductRepo: inner}
		_, err := NewProductRepo(flaky, instant(3), nil).Get(ctx, "missing")
		require.ErrorIs(t, err, app.ErrNotFound)
		assert.Equal(t, 1, flaky.calls)
	})
}
