package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/log"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		Store config.Store
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	productRepository, closeStore, err := repository.OpenProductRepository(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("error opening product store: %w", err)
	}
	defer closeStore()

	logger.InfoContext(ctx, "starting product table provisioning")

	if err := productRepository.EnsureTable(ctx); err != nil {
		return fmt.Errorf("error provisioning product table: %w", err)
	}

	logger.InfoContext(ctx, "product table provisioning completed successfully")

	return nil
}
