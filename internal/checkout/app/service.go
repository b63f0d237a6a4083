package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

var (
	ErrUnavailable     = errors.New("collaborator unavailable")
	ErrAddressRequired = errors.New("shipping address required")
)

type Service struct {
	Cart     CartReader
	Payment  PaymentGateway
	Shipping ShippingQuoter
	Tax      TaxCalculator

	shipFrom cart.Address
	log      *slog.Logger
}

// NewService wires the collaborators. Payment, shipping and tax may be nil;
// shipping and tax then degrade to "no rates" and the default tax rate.
func NewService(cartReader CartReader, payment PaymentGateway, shipping ShippingQuoter, tax TaxCalculator, shipFrom cart.Address, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		Cart:     cartReader,
		Payment:  payment,
		Shipping: shipping,
		Tax:      tax,
		shipFrom: shipFrom,
		log:      log,
	}
}

// QuoteShipping asks the shipping collaborator for rates to ship items to to.
func (s *Service) QuoteShipping(ctx context.Context, items []cart.LineItem, to cart.Address) ([]cart.ShippingRate, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if s.Shipping == nil {
		return nil, fmt.Errorf("shipping: %w", ErrUnavailable)
	}
	parcels, err := domain.ParcelsFor(items)
	if err != nil {
		return nil, err
	}
	rates, err := s.Shipping.Rates(ctx, s.shipFrom, to, parcels)
	if err != nil {
		return nil, fmt.Errorf("shipping rates: %w", err)
	}
	return rates, nil
}

// Summarize prices the cart. address and rateID override the checkout
// context stored in the cart when set. Shipping and tax are looked up
// concurrently; a failed tax lookup falls back to the default rate, a failed
// shipping lookup only matters when a rate was asked for.
func (s *Service) Summarize(ctx context.Context, cartID string, address *cart.Address, rateID string) (domain.Summary, error) {
	state, err := s.Cart.Snapshot(ctx, cartID)
	if err != nil {
		return domain.Summary{}, err
	}
	if len(state.Items) == 0 {
		return domain.Summary{}, domain.ErrEmptyCart
	}

	if address == nil {
		address = state.Address
	}
	if rateID == "" && state.SelectedRate != nil {
		rateID = state.SelectedRate.ID
	}

	rates := state.ShippingRates
	var (
		shippingErr error
		externalTax *decimal.Decimal
	)

	if address != nil {
		g, gctx := errgroup.WithContext(ctx)
		if s.Shipping != nil {
			g.Go(func() error {
				fetched, err := s.QuoteShipping(gctx, state.Items, *address)
				if err != nil {
					shippingErr = err
					return nil
				}
				rates = fetched
				return nil
			})
		}
		if s.Tax != nil {
			g.Go(func() error {
				tax, err := s.Tax.Calculate(gctx, *address, state.Items)
				if err != nil {
					s.log.Warn("tax calculation failed, using default rate", slog.String("cart_id", cartID), slog.Any("err", err))
					return nil
				}
				externalTax = &tax
				return nil
			})
		}
		_ = g.Wait()
	}

	var selected *cart.ShippingRate
	if rateID != "" {
		if shippingErr != nil {
			return domain.Summary{}, shippingErr
		}
		for _, r := range rates {
			if r.ID == rateID {
				r := r
				selected = &r
				break
			}
		}
		if selected == nil {
			return domain.Summary{}, cart.ErrUnknownRate
		}
	} else if shippingErr != nil {
		s.log.Warn("shipping quote failed", slog.String("cart_id", cartID), slog.Any("err", shippingErr))
	}

	return domain.Summary{
		Items:    state.Items,
		Address:  address,
		Rates:    rates,
		Selected: selected,
		Totals:   domain.ComputeTotals(state.Items, selected, externalTax),
	}, nil
}

// Checkout prices the cart and opens a payment session for it.
func (s *Service) Checkout(ctx context.Context, cartID string, address *cart.Address, rateID string) (domain.CheckoutSession, error) {
	if s.Payment == nil {
		return domain.CheckoutSession{}, fmt.Errorf("payment: %w", ErrUnavailable)
	}

	summary, err := s.Summarize(ctx, cartID, address, rateID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if summary.Selected != nil && summary.Address == nil {
		return domain.CheckoutSession{}, ErrAddressRequired
	}

	req, err := domain.NewCheckoutRequest(summary.Items, summary.Address, summary.Totals)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	session, err := s.Payment.CreateSession(ctx, req)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("create payment session: %w", err)
	}
	s.log.Info("checkout session created",
		slog.String("cart_id", cartID),
		slog.String("session_id", session.ID),
		slog.Int64("total_cents", req.Amounts.Total.Amount),
	)
	return session, nil
}
