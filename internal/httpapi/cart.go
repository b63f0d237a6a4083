package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkout "github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type lineItemJSON struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image,omitempty"`
	Category  string      `json:"category,omitempty"`
	LineTotal json.Number `json:"line_total"`
}

type addressJSON struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (a addressJSON) domain() cart.Address {
	return cart.Address(a)
}

type rateJSON struct {
	ID            string      `json:"id"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency,omitempty"`
	Provider      string      `json:"provider"`
	Service       string      `json:"service"`
	EstimatedDays int         `json:"estimated_days,omitempty"`
}

func toRateJSON(r cart.ShippingRate) rateJSON {
	return rateJSON{
		ID:            r.ID,
		Amount:        json.Number(r.Amount.String()),
		Currency:      r.Currency,
		Provider:      r.Provider,
		Service:       r.Service,
		EstimatedDays: r.EstimatedDays,
	}
}

type cartJSON struct {
	Items         []lineItemJSON `json:"items"`
	ItemCount     int            `json:"item_count"`
	Subtotal      json.Number    `json:"subtotal"`
	IsLoading     bool           `json:"is_loading"`
	Address       *addressJSON   `json:"address,omitempty"`
	ShippingRates []rateJSON     `json:"shipping_rates,omitempty"`
	SelectedRate  *rateJSON      `json:"selected_rate,omitempty"`
}

func toCartJSON(st cart.State) cartJSON {
	out := cartJSON{
		Items:     make([]lineItemJSON, 0, len(st.Items)),
		ItemCount: st.ItemCount(),
		Subtotal:  json.Number(st.Subtotal.String()),
		IsLoading: st.IsLoading,
	}
	for _, it := range st.Items {
		out.Items = append(out.Items, lineItemJSON{
			ID:        it.ID,
			Title:     it.Title,
			Price:     json.Number(it.UnitPrice.String()),
			Quantity:  it.Quantity,
			Image:     it.ImageRef,
			Category:  it.Category,
			LineTotal: json.Number(it.LineTotal().String()),
		})
	}
	if st.Address != nil {
		a := addressJSON(*st.Address)
		out.Address = &a
	}
	for _, r := range st.ShippingRates {
		out.ShippingRates = append(out.ShippingRates, toRateJSON(r))
	}
	if st.SelectedRate != nil {
		r := toRateJSON(*st.SelectedRate)
		out.SelectedRate = &r
	}
	return out
}

// store returns the caller's cart, starting a session when there is none.
func (s *Server) store(w http.ResponseWriter, r *http.Request) *cartapp.Store {
	return s.carts.Store(r.Context(), sessionID(w, r))
}

func emptyCart() cart.State {
	return cart.State{Subtotal: cart.Subtotal(nil)}
}

// dispatch runs cmd against the caller's cart. Without a session the cart is
// empty, so cmd is answered from an empty state and nothing is opened.
func (s *Server) dispatch(r *http.Request, cmd cart.Command) (cart.State, error) {
	id, ok := existingSession(r)
	if !ok {
		return cart.Apply(emptyCart(), cmd)
	}
	return s.carts.Store(r.Context(), id).Dispatch(r.Context(), cmd)
}

// getCart answers immediately, even while the cart is still hydrating.
// Callers without a session get an empty cart and no cookie.
func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	id, ok := existingSession(r)
	if !ok {
		writeJSON(w, http.StatusOK, toCartJSON(emptyCart()))
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(s.carts.Store(r.Context(), id).Snapshot()))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// addCartItem prices the line from the catalog, never from the request.
func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalogService()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Quantity < 0 || req.Quantity > cart.MaxQuantity {
		s.writeError(w, r, cart.ErrInvalidQuantity)
		return
	}

	product, err := svc.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.store(w, r).AddItem(r.Context(), catalogapp.AddToCartPayload(product), req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(st))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.dispatch(r, cart.UpdateQuantity{ID: mux.Vars(r)["id"], Quantity: req.Quantity})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(st))
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	st, err := s.dispatch(r, cart.RemoveItem{ID: mux.Vars(r)["id"]})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(st))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	st, err := s.dispatch(r, cart.ClearCart{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(st))
}

// setAddress stores the shipping address and, when a shipping collaborator
// is configured, refreshes the offered rates for it. A failed quote leaves
// the cart without rates.
func (s *Server) setAddress(w http.ResponseWriter, r *http.Request) {
	var req addressJSON
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	store := s.store(w, r)
	st, err := store.Dispatch(r.Context(), cart.SetAddress{Address: req.domain()})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.checkout != nil && len(st.Items) > 0 {
		rates, err := s.checkout.QuoteShipping(r.Context(), st.Items, req.domain())
		if err != nil {
			s.log.Warn("shipping quote failed", slog.String("cart", store.Key()), slog.Any("err", err))
		} else if st, err = store.Dispatch(r.Context(), cart.SetShippingRates{Rates: rates}); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toCartJSON(st))
}

type selectRateRequest struct {
	RateID string `json:"rate_id"`
}

func (s *Server) selectShippingRate(w http.ResponseWriter, r *http.Request) {
	var req selectRateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.dispatch(r, cart.SelectShippingRate{ID: req.RateID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(st))
}

type totalsRequest struct {
	Shipping *decimal.Decimal `json:"shipping"`
	Tax      *decimal.Decimal `json:"tax"`
}

type totalsJSON struct {
	Subtotal     json.Number      `json:"subtotal"`
	Shipping     json.Number      `json:"shipping"`
	Tax          json.Number      `json:"tax"`
	Total        json.Number      `json:"total"`
	TaxEstimated bool             `json:"tax_estimated"`
	Display      checkout.Display `json:"display"`
}

func toTotalsJSON(t checkout.Totals) totalsJSON {
	return totalsJSON{
		Subtotal:     json.Number(t.Subtotal.String()),
		Shipping:     json.Number(t.Shipping.String()),
		Tax:          json.Number(t.Tax.String()),
		Total:        json.Number(t.Total.String()),
		TaxEstimated: t.TaxEstimated,
		Display:      t.Display(),
	}
}

// cartTotals prices the hydrated cart. shipping overrides the selected rate;
// a missing or zero tax falls back to the default rate.
func (s *Server) cartTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	st := emptyCart()
	if id, ok := existingSession(r); ok {
		store, err := s.carts.Ready(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		st = store.Snapshot()
	}

	rate := st.SelectedRate
	if req.Shipping != nil {
		if req.Shipping.IsNegative() {
			s.writeError(w, r, fmt.Errorf("shipping: %w", errBadRequest))
			return
		}
		rate = &cart.ShippingRate{Amount: *req.Shipping}
	}

	writeJSON(w, http.StatusOK, toTotalsJSON(checkout.ComputeTotals(st.Items, rate, req.Tax)))
}
