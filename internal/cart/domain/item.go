package domain

import "github.com/shopspring/decimal"

// LineItem is one product entry in the cart. Title and UnitPrice are
// captured when the item is added and never refreshed from the catalog.
type LineItem struct {
	ID        string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
	Category  string

	// Physical attributes are only read by shipping; nil means unknown.
	WidthIn  *float64
	HeightIn *float64
	LengthIn *float64
	WeightLb *float64
}

// LineTotal is UnitPrice * Quantity at full precision.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Subtotal sums the line totals of items without rounding.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

func (li LineItem) clone() LineItem {
	li.WidthIn = cloneFloat(li.WidthIn)
	li.HeightIn = cloneFloat(li.HeightIn)
	li.LengthIn = cloneFloat(li.LengthIn)
	li.WeightLb = cloneFloat(li.WeightLb)
	return li
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
