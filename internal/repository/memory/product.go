package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Pesokrava/products-ms/internal/domain"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository.
// Records are copied in and out so callers never share state with the store.
type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*domain.Product
	now      func() time.Time
}

// NewProductRepository creates an empty in-memory product repository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		nextID:   1,
		products: make(map[int64]*domain.Product),
		now:      time.Now,
	}
}

func isActive(p *domain.Product) bool {
	return p.Available
}

// Create stores a new active product
func (r *ProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	product.ID = r.nextID
	product.Available = true
	product.CreatedAt = now
	product.UpdatedAt = now
	r.nextID++

	stored := *product
	r.products[product.ID] = &stored
	return nil
}

// GetByID retrieves an active product by ID
func (r *ProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok || !isActive(p) {
		return nil, domain.ErrNotFound
	}

	out := *p
	return &out, nil
}

// List retrieves a page of active products ordered by ID
func (r *ProductRepository) List(_ context.Context, limit, offset int) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := r.sorted(isActive)

	products := []*domain.Product{}
	if offset >= len(active) {
		return products, nil
	}

	end := offset + limit
	if end > len(active) {
		end = len(active)
	}

	return append(products, active[offset:end]...), nil
}

// Count returns the number of active products
func (r *ProductRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.products {
		if isActive(p) {
			count++
		}
	}
	return count, nil
}

// Update applies patch to a product regardless of its availability
func (r *ProductRepository) Update(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	p.UpdatedAt = r.now()

	out := *p
	return &out, nil
}

// FindByIDs returns every product, active or not, whose ID is in ids
func (r *ProductRepository) FindByIDs(_ context.Context, ids []int64) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	return r.sorted(func(p *domain.Product) bool {
		_, ok := wanted[p.ID]
		return ok
	}), nil
}

// sorted returns copies of the products matching keep, ordered by ID.
// Callers must hold the lock.
func (r *ProductRepository) sorted(keep func(*domain.Product) bool) []*domain.Product {
	out := []*domain.Product{}
	for _, p := range r.products {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
