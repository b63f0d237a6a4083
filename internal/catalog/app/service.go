package app

import (
	"context"
	"errors"
	"strings"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func validate(p domain.Product) error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Category) == "" || p.Price.IsNegative() {
		return ErrInvalidInput
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = ""
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if err := validate(p); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.Patch) (domain.Product, error) {
	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	next := patch.Apply(current)
	next.Title = strings.TrimSpace(next.Title)
	next.Category = strings.TrimSpace(next.Category)
	if err := validate(next); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Update(ctx, next)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// AddToCartPayload captures the product fields a cart line keeps. The cart
// never refreshes them from the catalog afterwards.
func AddToCartPayload(p domain.Product) cart.LineItem {
	return cart.LineItem{
		ID:        p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		ImageRef:  p.Image,
		Category:  p.Category,
		WidthIn:   p.WidthIn,
		HeightIn:  p.HeightIn,
		LengthIn:  p.LengthIn,
		WeightLb:  p.WeightLb,
	}
}
