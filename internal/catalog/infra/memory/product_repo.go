// Package memory keeps products in process memory. It backs local runs and
// tests when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductRepo struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	now      func() time.Time
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		products: make(map[string]domain.Product),
		now:      time.Now,
	}
}

func (r *ProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = r.now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.products[p.ID] = p
	return p, nil
}

func (r *ProductRepo) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

// List pages through products ordered by id. cursor is the last id of the
// previous page.
func (r *ProductRepo) List(_ context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	cursor = strings.TrimSpace(cursor)

	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if cursor != "" && p.ID <= cursor {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if len(matched) > limit {
		matched = matched[:limit]
	}

	var next string
	if len(matched) == limit && limit > 0 {
		next = matched[len(matched)-1].ID
	}
	return matched, next, nil
}

func (r *ProductRepo) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[p.ID]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.now().UTC()
	r.products[p.ID] = p
	return p, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return app.ErrNotFound
	}
	delete(r.products, id)
	return nil
}
