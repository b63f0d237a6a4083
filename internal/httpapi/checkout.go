package httpapi

import (
	"fmt"
	"net/http"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	checkout "github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type checkoutRequest struct {
	Address *addressJSON `json:"address"`
	RateID  string       `json:"rate_id"`
}

type checkoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// createCheckout opens a payment session for the caller's cart. The address
// and rate default to the ones stored on the cart.
func (s *Server) createCheckout(w http.ResponseWriter, r *http.Request) {
	if s.checkout == nil {
		s.writeError(w, r, fmt.Errorf("checkout: %w", errUnavailable))
		return
	}

	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var address *cart.Address
	if req.Address != nil {
		a := req.Address.domain()
		if err := a.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}
		address = &a
	}

	id, ok := existingSession(r)
	if !ok {
		s.writeError(w, r, checkout.ErrEmptyCart)
		return
	}
	session, err := s.checkout.Checkout(r.Context(), id, address, req.RateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{ID: session.ID, URL: session.URL})
}
