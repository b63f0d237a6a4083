package adapter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/codec"
	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
)

func TestCartRegistryReader(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	data, err := codec.Encode([]cart.LineItem{{ID: "a", Title: "Lamp", UnitPrice: decimal.NewFromInt(10), Quantity: 2}})
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, cartapp.KeyFor("s1"), data))

	reg := cartapp.NewRegistry(storage, cartapp.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	defer reg.Close(ctx)

	r := NewCartRegistryReader(reg)
	state, err := r.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.IsLoading)
	require.Len(t, state.Items, 1)
	assert.True(t, state.Subtotal.Equal(decimal.NewFromInt(20)))
}
