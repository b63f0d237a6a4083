package app

import (
	"context"

	"github.com/shopspring/decimal"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// CartReader returns the hydrated cart for cartID.
type CartReader interface {
	Snapshot(ctx context.Context, cartID string) (cart.State, error)
}

// PaymentGateway opens a hosted payment session.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error)
}

type ShippingQuoter interface {
	Rates(ctx context.Context, from, to cart.Address, parcels []domain.Parcel) ([]cart.ShippingRate, error)
}

// TaxCalculator returns the tax owed on items shipped to address. A zero
// amount is treated as "no answer".
type TaxCalculator interface {
	Calculate(ctx context.Context, to cart.Address, items []cart.LineItem) (decimal.Decimal, error)
}
