package domain

import (
	"fmt"
	"strings"
)

// MaxQuantity caps a single line. It bounds what one session can hold and
// keeps quantity arithmetic far from integer overflow.
const MaxQuantity = 999

// Apply is the cart transition function. It never mutates s; on error it
// returns s unchanged alongside the reason.
func Apply(s State, cmd Command) (State, error) {
	switch c := cmd.(type) {
	case AddItem:
		return addItem(s, c)
	case RemoveItem:
		return removeItem(s, c), nil
	case UpdateQuantity:
		return updateQuantity(s, c)
	case ClearCart:
		return State{Subtotal: Subtotal(nil)}, nil
	case ReplaceItems:
		next := State{}.withItems(cloneItems(c.Items))
		return next, nil
	case SetAddress:
		if err := c.Address.Validate(); err != nil {
			return s, err
		}
		next := s.Clone()
		a := c.Address
		next.Address = &a
		return next, nil
	case SetShippingRates:
		next := s.Clone()
		next.ShippingRates = append([]ShippingRate(nil), c.Rates...)
		next.SelectedRate = nil
		return next, nil
	case SelectShippingRate:
		for _, r := range s.ShippingRates {
			if r.ID == c.ID {
				next := s.Clone()
				rate := r
				next.SelectedRate = &rate
				return next, nil
			}
		}
		return s, ErrUnknownRate
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func addItem(s State, c AddItem) (State, error) {
	qty := c.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || qty > MaxQuantity {
		return s, ErrInvalidQuantity
	}
	if strings.TrimSpace(c.Item.ID) == "" || c.Item.UnitPrice.IsNegative() {
		return s, ErrInvalidItem
	}

	items := cloneItems(s.Items)
	for i := range items {
		if items[i].ID == c.Item.ID {
			if items[i].Quantity > MaxQuantity-qty {
				return s, ErrInvalidQuantity
			}
			items[i].Quantity += qty
			return s.withItems(items), nil
		}
	}

	added := c.Item.clone()
	added.Quantity = qty
	return s.withItems(append(items, added)), nil
}

func removeItem(s State, c RemoveItem) State {
	if _, ok := s.Find(c.ID); !ok {
		return s
	}
	items := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ID != c.ID {
			items = append(items, it.clone())
		}
	}
	return s.withItems(items)
}

func updateQuantity(s State, c UpdateQuantity) (State, error) {
	if c.Quantity < 1 || c.Quantity > MaxQuantity {
		return s, ErrInvalidQuantity
	}
	if _, ok := s.Find(c.ID); !ok {
		return s, nil
	}
	items := cloneItems(s.Items)
	for i := range items {
		if items[i].ID == c.ID {
			items[i].Quantity = c.Quantity
		}
	}
	return s.withItems(items), nil
}
