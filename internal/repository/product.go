package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
)

type UpdateProductFieldsParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// ProductRepository persists products in a single table keyed by product id.
type ProductRepository interface {
	// EnsureTable provisions the backing table. An existing table is not an
	// error; any other failure wraps apperr.ProvisioningErr.
	EnsureTable(ctx context.Context) error

	// PutProduct inserts or overwrites the product with the same id.
	PutProduct(ctx context.Context, product model.Product) error

	// GetProduct reports false when no product has the given id.
	GetProduct(ctx context.Context, id string) (model.Product, bool, error)

	// ListAllProducts returns every stored product in no particular order.
	ListAllProducts(ctx context.Context) ([]model.Product, error)

	// DeleteProduct succeeds whether or not the product exists.
	DeleteProduct(ctx context.Context, id string) error

	// DeleteAllProducts reads every id and then deletes them. It is not atomic:
	// products created concurrently may survive. Returns the number of deleted ids.
	DeleteAllProducts(ctx context.Context) (int, error)

	// UpdateProductFields sets name, description and price. A missing id is
	// created rather than rejected.
	UpdateProductFields(ctx context.Context, id string, params UpdateProductFieldsParams) error

	IsHealthy(ctx context.Context) (bool, error)
}
