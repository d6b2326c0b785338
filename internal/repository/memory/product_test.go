package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/products-ms/internal/domain"
)

func seed(t *testing.T, repo *ProductRepository, n int) []*domain.Product {
	t.Helper()
	products := make([]*domain.Product, 0, n)
	for i := 0; i < n; i++ {
		p := &domain.Product{Name: fmt.Sprintf("Product %d", i+1), Price: float64(i) + 0.5}
		require.NoError(t, repo.Create(context.Background(), p))
		products = append(products, p)
	}
	return products
}

func TestProductRepository_CreateAssignsSequentialIDs(t *testing.T) {
	repo := NewProductRepository()
	products := seed(t, repo, 3)

	for i, p := range products {
		assert.Equal(t, int64(i+1), p.ID)
		assert.True(t, p.Available)
		assert.False(t, p.CreatedAt.IsZero())
	}
}

func TestProductRepository_ReturnsCopies(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 1)

	p, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	p.Name = "mutated"

	again, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Product 1", again.Name)
}

func TestProductRepository_InactiveHiddenFromActiveReads(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	seed(t, repo, 3)

	unavailable := false
	_, err := repo.Update(ctx, 2, domain.ProductPatch{Available: &unavailable})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)

	found, err := repo.FindByIDs(ctx, []int64{2, 3, 99})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.False(t, found[0].Available)
}

func TestProductRepository_ListWindow(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	seed(t, repo, 5)

	page, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)

	tail, err := repo.List(ctx, 2, 4)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	beyond, err := repo.List(ctx, 10, 40)
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)
}

func TestProductRepository_UpdateMissing(t *testing.T) {
	repo := NewProductRepository()
	name := "x"

	_, err := repo.Update(context.Background(), 7, domain.ProductPatch{Name: &name})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepository_ConcurrentCreate(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &domain.Product{Name: "p", Price: 1})
		}()
	}
	wg.Wait()

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, total)

	all, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	seen := make(map[int64]bool)
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
}
