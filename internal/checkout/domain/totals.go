package domain

import (
	"github.com/shopspring/decimal"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
)

// DefaultTaxRate applies when no external tax figure is available.
var DefaultTaxRate = decimal.RequireFromString("0.0825")

const Currency = "usd"

// Totals are carried at full precision; round only through Display.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	// TaxEstimated is set when Tax came from DefaultTaxRate.
	TaxEstimated bool
}

// ComputeTotals prices items. A nil or zero externalTax falls back to
// subtotal * DefaultTaxRate; a nil rate means free shipping.
func ComputeTotals(items []cart.LineItem, rate *cart.ShippingRate, externalTax *decimal.Decimal) Totals {
	t := Totals{
		Subtotal: cart.Subtotal(items),
		Shipping: decimal.Zero,
	}
	if rate != nil {
		t.Shipping = rate.Amount
	}
	if externalTax != nil && !externalTax.IsZero() {
		t.Tax = *externalTax
	} else {
		t.Tax = t.Subtotal.Mul(DefaultTaxRate)
		t.TaxEstimated = true
	}
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax)
	return t
}

type Display struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Display rounds each figure half away from zero to two decimals.
func (t Totals) Display() Display {
	return Display{
		Subtotal: t.Subtotal.StringFixed(2),
		Shipping: t.Shipping.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}
