package domain

import cart "github.com/dwikikusuma/storefront/internal/cart/domain"

// Money in the smallest currency unit, as payment gateways expect it.
type Money struct {
	Currency string
	Amount   int64
}

// Parcel is one shippable unit. Lengths are inches, weight is pounds.
type Parcel struct {
	LengthIn float64
	WidthIn  float64
	HeightIn float64
	WeightLb float64
}

type CheckoutLine struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice Money
}

type Amounts struct {
	Subtotal Money
	Shipping Money
	Tax      Money
	Total    Money
}

// CheckoutRequest is what a payment gateway needs to open a hosted session.
type CheckoutRequest struct {
	Lines           []CheckoutLine
	ShippingAddress *cart.Address
	Amounts         Amounts
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Summary is the priced view of a cart ready for checkout.
type Summary struct {
	Items    []cart.LineItem
	Address  *cart.Address
	Rates    []cart.ShippingRate
	Selected *cart.ShippingRate
	Totals   Totals
}
