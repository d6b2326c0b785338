package domain

import (
	"context"
	"time"
)

// Product represents a product in the catalog.
// A product is active while Available is true; removal only flips the flag.
type Product struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Available bool      `json:"available" db:"available"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductPatch lists the fields to change; nil fields are left untouched
type ProductPatch struct {
	Name      *string
	Price     *float64
	Available *bool
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Available == nil
}

// ProductRepository defines the interface for product data access.
// Reads are scoped to active products unless stated otherwise.
type ProductRepository interface {
	// Create inserts a new product and fills in its generated fields
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves an active product by ID
	GetByID(ctx context.Context, id int64) (*Product, error)

	// List retrieves a page of active products ordered by ID
	List(ctx context.Context, limit, offset int) ([]*Product, error)

	// Count returns the number of active products
	Count(ctx context.Context) (int, error)

	// Update applies patch to the product with the given ID, active or not
	Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error)

	// FindByIDs returns every product (active or not) whose ID is in ids
	FindByIDs(ctx context.Context, ids []int64) ([]*Product, error)
}
