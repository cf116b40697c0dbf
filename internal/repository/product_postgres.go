package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
)

const upsertProductQuery = `
	INSERT INTO products (id, name, description, price)
	VALUES (@id, @name, @description, @price)
	ON CONFLICT (id) DO UPDATE
	SET
		name        = EXCLUDED.name,
		description = EXCLUDED.description,
		price       = EXCLUDED.price
`

type postgresProduct struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Price       string `db:"price"`
}

var _ ProductRepository = (*postgresProductRepository)(nil)

type postgresDB interface {
	db.DB
	db.HealthChecker
}

type postgresProductRepository struct {
	pool *pgxpool.Pool
	db   postgresDB
}

func NewPostgresProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &postgresProductRepository{
		pool: pool,
		db:   db.NewClient(pool),
	}
}

func (r postgresProductRepository) EnsureTable(ctx context.Context) error {
	if err := db.Migrate(ctx, r.pool); err != nil {
		return apperr.ProvisioningErr.WrapParent(err)
	}
	return nil
}

func (r postgresProductRepository) PutProduct(ctx context.Context, product model.Product) error {
	return r.upsert(ctx, product)
}

func (r postgresProductRepository) GetProduct(ctx context.Context, id string) (model.Product, bool, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price::text AS price
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, false, apperr.StoreErr.WrapParent(fmt.Errorf("query product: %w", err))
	}

	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[postgresProduct])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, apperr.StoreErr.WrapParent(fmt.Errorf("collect product: %w", err))
	}

	modelProduct, err := postgresProductToModelProduct(product)
	if err != nil {
		return model.Product{}, false, fmt.Errorf("convert product to model product: %w", err)
	}

	return modelProduct, true, nil
}

func (r postgresProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, price::text AS price FROM products`)
	if err != nil {
		return nil, apperr.StoreErr.WrapParent(fmt.Errorf("query products: %w", err))
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[postgresProduct])
	if err != nil {
		return nil, apperr.StoreErr.WrapParent(fmt.Errorf("collect products: %w", err))
	}

	modelProducts := make([]model.Product, 0, len(products))
	for _, product := range products {
		modelProduct, err := postgresProductToModelProduct(product)
		if err != nil {
			return nil, fmt.Errorf("convert product to model product: %w", err)
		}
		modelProducts = append(modelProducts, modelProduct)
	}

	return modelProducts, nil
}

func (r postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("delete product: %w", err))
	}
	return nil
}

func (r postgresProductRepository) DeleteAllProducts(ctx context.Context) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, apperr.StoreErr.WrapParent(fmt.Errorf("delete all products: %w", err))
	}
	return int(tag.RowsAffected()), nil
}

func (r postgresProductRepository) UpdateProductFields(ctx context.Context, id string, params UpdateProductFieldsParams) error {
	return r.upsert(ctx, model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
	})
}

func (r postgresProductRepository) IsHealthy(ctx context.Context) (bool, error) {
	return r.db.IsHealthy(ctx)
}

func (r postgresProductRepository) upsert(ctx context.Context, product model.Product) error {
	var price pgtype.Numeric
	if err := price.Scan(product.Price.String()); err != nil {
		return fmt.Errorf("scan price: %w", err)
	}

	if _, err := r.db.Exec(ctx, upsertProductQuery, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"price":       price,
	}); err != nil {
		return apperr.StoreErr.WrapParent(fmt.Errorf("upsert product: %w", err))
	}

	return nil
}

func postgresProductToModelProduct(product postgresProduct) (model.Product, error) {
	price, err := decimal.NewFromString(product.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse price of product %s: %w", product.ID, err)
	}

	return model.Product{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       price,
	}, nil
}
