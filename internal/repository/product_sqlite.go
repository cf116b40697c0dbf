package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/sqlite"
)

var _ ProductRepository = (*sqliteProductRepository)(nil)

type sqliteProductRepository struct {
	db *sql.DB
}

func NewSQLiteProductRepository(db *sql.DB) ProductRepository {
	return &sqliteProductRepository{db: db}
}

func (r sqliteProductRepository) EnsureTable(ctx context.Context) error {
	if err := sqlite.Migrate(ctx, r.db); err != nil {
		return apperr.ProvisioningErr.WrapParent(err)
	}
	return nil
}

func (r sqliteProductRepository) PutProduct(ctx context.Context, product model.Product) error {
	return r.upsert(ctx, product)
}

func (r sqliteProductRepository) GetProduct(ctx context.Context, id string) (model.Product, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price FROM products WHERE id = ?`, id)

	product, err := scanSQLiteProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, err
	}

	return product, true, nil
}

func (r sqliteProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, price FROM products`)
	if err != nil {
		return nil, apperr.StoreErr.WrapParent(fmt.Errorf("query products: %w", err))
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		product, err := scanSQLiteProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreErr.WrapParent(fmt.Errorf("iterate products: %w", err))
	}

	return products, nil
}

func (r sqliteProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("delete product: %w", err))
	}
	return nil
}

func (r sqliteProductRepository) DeleteAllProducts(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, apperr.StoreErr.WrapParent(fmt.Errorf("delete all products: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (r sqliteProductRepository) UpdateProductFields(ctx context.Context, id string, params UpdateProductFieldsParams) error {
	return r.upsert(ctx, model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
	})
}

func (r sqliteProductRepository) IsHealthy(ctx context.Context) (bool, error) {
	if err := r.db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("ping sqlite db: %w", err)
	}
	return true, nil
}

func (r sqliteProductRepository) upsert(ctx context.Context, product model.Product) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET
			name        = excluded.name,
			description = excluded.description,
			price       = excluded.price
	`, product.ID, product.Name, product.Description, product.Price.String()); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("upsert product: %w", err))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProduct(row rowScanner) (model.Product, error) {
	var (
		product model.Product
		price   string
	)
	if err := row.Scan(&product.ID, &product.Name, &product.Description, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, err
		}
		return model.Product{}, apperr.StoreErr.WrapParent(fmt.Errorf("scan product: %w", err))
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse price of product %s: %w", product.ID, err)
	}
	product.Price = parsed

	return product, nil
}
