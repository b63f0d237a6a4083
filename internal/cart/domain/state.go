package domain

import "github.com/shopspring/decimal"

// State is an immutable snapshot of the cart. Subtotal is always the sum of
// the line totals of Items; only Apply produces new states.
type State struct {
	Items     []LineItem
	Subtotal  decimal.Decimal
	IsLoading bool

	// Checkout context, kept for the session only and never persisted.
	Address       *Address
	ShippingRates []ShippingRate
	SelectedRate  *ShippingRate
}

// Initial is the state before hydration has read persisted storage.
func Initial() State {
	return State{Subtotal: decimal.Zero, IsLoading: true}
}

// Find returns the line item with id.
func (s State) Find(id string) (LineItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it.clone(), true
		}
	}
	return LineItem{}, false
}

// ItemCount is the total number of units across all lines.
func (s State) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Clone deep-copies s so callers can hold it without aliasing the store.
func (s State) Clone() State {
	out := s
	out.Items = cloneItems(s.Items)
	if s.Address != nil {
		a := *s.Address
		out.Address = &a
	}
	if s.ShippingRates != nil {
		out.ShippingRates = append([]ShippingRate(nil), s.ShippingRates...)
	}
	if s.SelectedRate != nil {
		r := *s.SelectedRate
		out.SelectedRate = &r
	}
	return out
}

func (s State) withItems(items []LineItem) State {
	s.Items = items
	s.Subtotal = Subtotal(items)
	return s
}
