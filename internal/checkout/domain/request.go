package domain

import (
	"errors"

	"github.com/shopspring/decimal"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
)

var ErrEmptyCart = errors.New("cart is empty")

var hundred = decimal.NewFromInt(100)

// Cents converts d to whole cents, rounding half away from zero.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

func usd(d decimal.Decimal) Money {
	return Money{Currency: Currency, Amount: Cents(d)}
}

// NewCheckoutRequest converts a priced cart into gateway units.
func NewCheckoutRequest(items []cart.LineItem, address *cart.Address, totals Totals) (CheckoutRequest, error) {
	if len(items) == 0 {
		return CheckoutRequest{}, ErrEmptyCart
	}

	lines := make([]CheckoutLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, CheckoutLine{
			ID:        it.ID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: usd(it.UnitPrice),
		})
	}

	var addr *cart.Address
	if address != nil {
		a := *address
		addr = &a
	}

	return CheckoutRequest{
		Lines:           lines,
		ShippingAddress: addr,
		Amounts: Amounts{
			Subtotal: usd(totals.Subtotal),
			Shipping: usd(totals.Shipping),
			Tax:      usd(totals.Tax),
			Total:    usd(totals.Total),
		},
	}, nil
}
