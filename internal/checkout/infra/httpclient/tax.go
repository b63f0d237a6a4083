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

type TaxClient struct {
	c client
}

// NewTaxClient posts to <baseURL>/calculate.
func NewTaxClient(baseURL string, timeout time.Duration) *TaxClient {
	return &TaxClient{c: newClient("tax", baseURL, timeout)}
}

type taxLineJSON struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Quantity  int    `json:"quantity"`
}

type taxRequestJSON struct {
	Currency string        `json:"currency"`
	Address  addressJSON   `json:"address"`
	Items    []taxLineJSON `json:"items"`
}

type taxResponseJSON struct {
	TaxAmount json.Number `json:"tax_amount"`
}

// Calculate returns the tax in dollars. An absent tax_amount reads as zero.
func (t *TaxClient) Calculate(ctx context.Context, to cart.Address, items []cart.LineItem) (decimal.Decimal, error) {
	body := taxRequestJSON{
		Currency: domain.Currency,
		Address:  toAddressJSON(to),
		Items:    make([]taxLineJSON, 0, len(items)),
	}
	for _, it := range items {
		body.Items = append(body.Items, taxLineJSON{
			Reference: it.ID,
			Amount:    domain.Cents(it.LineTotal()),
			Quantity:  it.Quantity,
		})
	}

	var out taxResponseJSON
	if err := t.c.postJSON(ctx, "/calculate", body, &out); err != nil {
		return decimal.Zero, err
	}
	if out.TaxAmount == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(out.TaxAmount.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("tax: amount %q: %w", out.TaxAmount, err)
	}
	return amount, nil
}
