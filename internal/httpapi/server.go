// Package httpapi is the storefront's JSON API over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Deps are the services the API routes to. Catalog and Checkout may be nil,
// in which case their routes answer 503.
type Deps struct {
	Carts    *cartapp.Registry
	Catalog  *catalogapp.Service
	Checkout *checkoutapp.Service
	Metrics  http.Handler
	Log      *slog.Logger

	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

type Server struct {
	carts    *cartapp.Registry
	catalog  *catalogapp.Service
	checkout *checkoutapp.Service
	ready    func(ctx context.Context) error
	log      *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	s := &Server{
		carts:    d.Carts,
		catalog:  d.Catalog,
		checkout: d.Checkout,
		ready:    d.Ready,
		log:      logger.OrDefault(d.Log),
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("storefront"))

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", s.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.updateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", s.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/cart", s.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", s.clearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", s.addCartItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", s.updateCartItem).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{id}", s.removeCartItem).Methods(http.MethodDelete)
	api.HandleFunc("/cart/address", s.setAddress).Methods(http.MethodPut)
	api.HandleFunc("/cart/shipping-rate", s.selectShippingRate).Methods(http.MethodPut)
	api.HandleFunc("/cart/totals", s.cartTotals).Methods(http.MethodPost)

	api.HandleFunc("/checkout", s.createCheckout).Methods(http.MethodPost)

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.log.Warn("readiness check failed", slog.Any("err", err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
