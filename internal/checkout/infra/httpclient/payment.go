package httpclient

import (
	"context"
	"strconv"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type PaymentClient struct {
	c client
}

// NewPaymentClient posts to <baseURL>/sessions.
func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{c: newClient("payment", baseURL, timeout)}
}

type sessionLineJSON struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Quantity   int    `json:"quantity"`
	Reference  string `json:"reference"`
}

type sessionRequestJSON struct {
	Mode            string            `json:"mode"`
	LineItems       []sessionLineJSON `json:"line_items"`
	ShippingAddress *addressJSON      `json:"shipping_address,omitempty"`
	Metadata        map[string]string `json:"metadata"`
}

type sessionResponseJSON struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (p *PaymentClient) CreateSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	body := sessionRequestJSON{
		Mode:      "payment",
		LineItems: make([]sessionLineJSON, 0, len(req.Lines)),
		Metadata: map[string]string{
			"subtotal": strconv.FormatInt(req.Amounts.Subtotal.Amount, 10),
			"shipping": strconv.FormatInt(req.Amounts.Shipping.Amount, 10),
			"tax":      strconv.FormatInt(req.Amounts.Tax.Amount, 10),
			"total":    strconv.FormatInt(req.Amounts.Total.Amount, 10),
		},
	}
	for _, l := range req.Lines {
		body.LineItems = append(body.LineItems, sessionLineJSON{
			Name:       l.Title,
			UnitAmount: l.UnitPrice.Amount,
			Currency:   l.UnitPrice.Currency,
			Quantity:   l.Quantity,
			Reference:  l.ID,
		})
	}
	if req.ShippingAddress != nil {
		a := toAddressJSON(*req.ShippingAddress)
		body.ShippingAddress = &a
	}

	var out sessionResponseJSON
	if err := p.c.postJSON(ctx, "/sessions", body, &out); err != nil {
		return domain.CheckoutSession{}, err
	}
	return domain.CheckoutSession{ID: out.ID, URL: out.URL}, nil
}
