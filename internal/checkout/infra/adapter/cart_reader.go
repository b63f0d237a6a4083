package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
)

// CartRegistryReader reads session carts for checkout, waiting for
// hydration so checkout never prices a half-loaded cart.
type CartRegistryReader struct {
	carts *cartapp.Registry
}

func NewCartRegistryReader(carts *cartapp.Registry) *CartRegistryReader {
	return &CartRegistryReader{carts: carts}
}

func (r *CartRegistryReader) Snapshot(ctx context.Context, cartID string) (cart.State, error) {
	store, err := r.carts.Ready(ctx, cartID)
	if err != nil {
		return cart.State{}, err
	}
	return store.Snapshot(), nil
}
