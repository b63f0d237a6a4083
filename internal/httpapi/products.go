package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type productJSON struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
	Condition   string      `json:"condition,omitempty"`
	Size        string      `json:"size,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Width       *float64    `json:"width,omitempty"`
	Height      *float64    `json:"height,omitempty"`
	Length      *float64    `json:"length,omitempty"`
	Weight      *float64    `json:"weight,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toProductJSON(p domain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Title:       p.Title,
		Price:       json.Number(p.Price.String()),
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		Condition:   p.Condition,
		Size:        p.Size,
		Brand:       p.Brand,
		Width:       p.WidthIn,
		Height:      p.HeightIn,
		Length:      p.LengthIn,
		Weight:      p.WeightLb,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// productInput is used for both create and update. Absent fields are left
// unchanged on update.
type productInput struct {
	Title       *string          `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
	Category    *string          `json:"category"`
	Condition   *string          `json:"condition"`
	Size        *string          `json:"size"`
	Brand       *string          `json:"brand"`
	Width       *float64         `json:"width"`
	Height      *float64         `json:"height"`
	Length      *float64         `json:"length"`
	Weight      *float64         `json:"weight"`
}

func (in productInput) patch() domain.Patch {
	return domain.Patch{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		Condition:   in.Condition,
		Size:        in.Size,
		Brand:       in.Brand,
		WidthIn:     in.Width,
		HeightIn:    in.Height,
		LengthIn:    in.Length,
		WeightLb:    in.Weight,
	}
}

func (s *Server) catalogService() (*catalogapp.Service, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("catalog: %w", errUnavailable)
	}
	return s.catalog, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalogService()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	products, next, err := svc.ListProducts(r.Context(), q.Get("q"), limit, q.Get("cursor"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":    out,
		"next_cursor": next,
	})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalogService()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var in productInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.Price == nil {
		s.writeError(w, r, catalogapp.ErrInvalidInput)
		return
	}

	created, err := svc.CreateProduct(r.Context(), in.patch().Apply(domain.Product{}))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductJSON(created))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalogService()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := svc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(p))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalogService()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var in productInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := svc.UpdateProduct(r.Context(), mux.Vars(r)["id"], in.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(updated))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalogService()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := svc.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
