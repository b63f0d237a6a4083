package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type ShippingClient struct {
	c client
}

// NewShippingClient posts shipments to <baseURL>/shipments and reads back
// the offered rates.
func NewShippingClient(baseURL string, timeout time.Duration) *ShippingClient {
	return &ShippingClient{c: newClient("shipping", baseURL, timeout)}
}

type parcelJSON struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type shipmentRequestJSON struct {
	AddressFrom addressJSON  `json:"address_from"`
	AddressTo   addressJSON  `json:"address_to"`
	Parcels     []parcelJSON `json:"parcels"`
	Async       bool         `json:"async"`
}

type rateJSON struct {
	ObjectID     string      `json:"object_id"`
	Amount       json.Number `json:"amount"`
	Currency     string      `json:"currency"`
	Provider     string      `json:"provider"`
	ServiceLevel struct {
		Name string `json:"name"`
	} `json:"servicelevel"`
	EstimatedDays int `json:"estimated_days"`
}

type shipmentResponseJSON struct {
	Rates []rateJSON `json:"rates"`
}

func (s *ShippingClient) Rates(ctx context.Context, from, to cart.Address, parcels []domain.Parcel) ([]cart.ShippingRate, error) {
	body := shipmentRequestJSON{
		AddressFrom: toAddressJSON(from),
		AddressTo:   toAddressJSON(to),
		Parcels:     make([]parcelJSON, 0, len(parcels)),
	}
	for _, p := range parcels {
		body.Parcels = append(body.Parcels, parcelJSON{
			Length:       formatFloat(p.LengthIn),
			Width:        formatFloat(p.WidthIn),
			Height:       formatFloat(p.HeightIn),
			DistanceUnit: "in",
			Weight:       formatFloat(p.WeightLb),
			MassUnit:     "lb",
		})
	}

	var out shipmentResponseJSON
	if err := s.c.postJSON(ctx, "/shipments", body, &out); err != nil {
		return nil, err
	}
	if len(out.Rates) == 0 {
		return nil, fmt.Errorf("shipping: no rates available")
	}

	rates := make([]cart.ShippingRate, 0, len(out.Rates))
	for _, r := range out.Rates {
		amount, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("shipping: rate %s amount %q: %w", r.ObjectID, r.Amount, err)
		}
		rates = append(rates, cart.ShippingRate{
			ID:            r.ObjectID,
			Amount:        amount,
			Currency:      r.Currency,
			Provider:      r.Provider,
			Service:       r.ServiceLevel.Name,
			EstimatedDays: r.EstimatedDays,
		})
	}
	return rates, nil
}
