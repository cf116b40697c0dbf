package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/dynamo"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/sqlite"
)

type CloseFunc func()

// OpenProductRepository connects to the configured store. The table is not
// provisioned; call EnsureTable before serving.
func OpenProductRepository(ctx context.Context, cfg config.Store, logger *slog.Logger) (ProductRepository, CloseFunc, error) {
	logger.InfoContext(ctx, "opening product store", slog.String("driver", cfg.Driver.String()))

	switch cfg.Driver {
	case config.StoreDriverDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("create dynamodb client: %w", err)
		}
		return NewDynamoProductRepository(client, cfg.DynamoDB), func() {}, nil

	case config.StoreDriverPostgres:
		pool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("create pgx pool: %w", err)
		}
		return NewPostgresProductRepository(pool), pool.Close, nil

	case config.StoreDriverSQLite:
		sqlDB, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite db: %w", err)
		}
		return NewSQLiteProductRepository(sqlDB), func() {
			if err := sqlDB.Close(); err != nil {
				logger.ErrorContext(ctx, "error closing sqlite db", slog.Any("error", err))
			}
		}, nil

	case config.StoreDriverMemory:
		return NewMemoryProductRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
