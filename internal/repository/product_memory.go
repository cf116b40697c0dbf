package repository

import (
	"context"
	"sync"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
)

var _ ProductRepository = (*MemoryProductRepository)(nil)

// MemoryProductRepository keeps products in process memory. It backs the
// "memory" store driver and tests; nothing survives a restart.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]model.Product),
	}
}

func (r *MemoryProductRepository) EnsureTable(context.Context) error {
	return nil
}

func (r *MemoryProductRepository) PutProduct(_ context.Context, product model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = product
	return nil
}

func (r *MemoryProductRepository) GetProduct(_ context.Context, id string) (model.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	return product, ok, nil
}

func (r *MemoryProductRepository) ListAllProducts(context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *MemoryProductRepository) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) DeleteAllProducts(ctx context.Context) (int, error) {
	products, err := r.ListAllProducts(ctx)
	if err != nil {
		return 0, err
	}

	for _, p := range products {
		if err := r.DeleteProduct(ctx, p.ID); err != nil {
			return 0, err
		}
	}
	return len(products), nil
}

func (r *MemoryProductRepository) UpdateProductFields(_ context.Context, id string, params UpdateProductFieldsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[id] = model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
	}
	return nil
}

func (r *MemoryProductRepository) IsHealthy(context.Context) (bool, error) {
	return true, nil
}
