package domain

import (
	"errors"
	"fmt"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
)

const (
	DefaultDimensionIn = 5.0
	DefaultWeightLb    = 2.0

	// MaxParcels bounds a single rate request. Carriers reject larger
	// shipments per label anyway.
	MaxParcels = 200
)

var ErrTooManyParcels = errors.New("too many parcels for one shipment")

// ParcelsFor ships every unit as its own parcel. Missing or non-positive
// dimensions take the defaults. Carts needing more than MaxParcels parcels
// are rejected before anything is allocated.
func ParcelsFor(items []cart.LineItem) ([]Parcel, error) {
	total := 0
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if it.Quantity > MaxParcels-total {
			return nil, fmt.Errorf("%w: limit %d", ErrTooManyParcels, MaxParcels)
		}
		total += it.Quantity
	}

	parcels := make([]Parcel, 0, total)
	for _, it := range items {
		p := Parcel{
			LengthIn: orDefault(it.LengthIn, DefaultDimensionIn),
			WidthIn:  orDefault(it.WidthIn, DefaultDimensionIn),
			HeightIn: orDefault(it.HeightIn, DefaultDimensionIn),
			WeightLb: orDefault(it.WeightLb, DefaultWeightLb),
		}
		for i := 0; i < it.Quantity; i++ {
			parcels = append(parcels, p)
		}
	}
	return parcels, nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}
