package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/event"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

type CreateProductParams struct {
	Name        string `validate:"required"`
	Description string
	Price       string `validate:"required,decimal"`
}

type UpdateProductParams struct {
	Name        string `validate:"required"`
	Description string
	Price       string `validate:"required,decimal"`
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProductForEdit(ctx context.Context, id string) (model.Product, error)
	// UpdateProduct creates the product when id is unknown.
	UpdateProduct(ctx context.Context, id string, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DeleteAllProducts(ctx context.Context) error
	IsHealthy(ctx context.Context) (bool, error)
}

const DefaultPublishTimeout = 2 * time.Second

type productService struct {
	logger         *slog.Logger
	productRepo    repository.ProductRepository
	publisher      event.Publisher
	validator      validator.Validator
	publishTimeout time.Duration
}

type Option func(*productService)

// WithPublishTimeout bounds how long a write waits for its event to be
// published. Non-positive values keep the default.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *productService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func NewProductService(
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	publisher event.Publisher,
	validator validator.Validator,
	opts ...Option,
) ProductService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}

	s := &productService{
		logger:         logger.With(slog.String("service", "product")),
		productRepo:    productRepo,
		publisher:      publisher,
		validator:      validator,
		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	price, err := s.validatePrice(params, params.Price)
	if err != nil {
		return model.Product{}, err
	}

	id, err := newProductID()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate product id: %w", err)
	}

	product := model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Price:       price,
	}

	if err := s.productRepo.PutProduct(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("product repository put product: %w", err)
	}

	s.publish(ctx, event.ProductCreated(product))

	return product, nil
}

func (s *productService) GetProductForEdit(ctx context.Context, id string) (model.Product, error) {
	product, found, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}

	if !found {
		return model.Product{}, apperr.ProductNotFoundErr.WrapParent(fmt.Errorf("product %q does not exist", id))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, params UpdateProductParams) (model.Product, error) {
	price, err := s.validatePrice(params, params.Price)
	if err != nil {
		return model.Product{}, err
	}

	if err := s.productRepo.UpdateProductFields(ctx, id, repository.UpdateProductFieldsParams{
		Name:        params.Name,
		Description: params.Description,
		Price:       price,
	}); err != nil {
		return model.Product{}, fmt.Errorf("product repository update product fields: %w", err)
	}

	product := model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Price:       price,
	}
	s.publish(ctx, event.ProductUpdated(product))

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("product repository delete product: %w", err)
	}

	s.publish(ctx, event.ProductDeleted(id))

	return nil
}

func (s *productService) DeleteAllProducts(ctx context.Context) error {
	n, err := s.productRepo.DeleteAllProducts(ctx)
	if err != nil {
		return fmt.Errorf("product repository delete all products: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted all products", slog.Int("count", n))
	s.publish(ctx, event.ProductsPurged(n))

	return nil
}

func (s *productService) IsHealthy(ctx context.Context) (bool, error) {
	return s.productRepo.IsHealthy(ctx)
}

// validatePrice validates params and returns the parsed price. A missing name
// or price wins over a malformed price.
func (s *productService) validatePrice(params any, rawPrice string) (decimal.Decimal, error) {
	if err := s.validator.Validate(params); err != nil {
		fieldErrs, ok := validator.ValidationErrors(err)
		if !ok {
			return decimal.Decimal{}, apperr.ValidationErr.WrapParent(err)
		}

		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return decimal.Decimal{}, apperr.NameAndPriceRequiredErr.WrapParent(fieldError(fe))
			}
		}
		return decimal.Decimal{}, apperr.InvalidPriceErr.WrapParent(fieldError(fieldErrs[0]))
	}

	price, err := validator.ParseDecimal(rawPrice)
	if err != nil {
		return decimal.Decimal{}, apperr.InvalidPriceErr.WrapParent(err)
	}

	return price, nil
}

func fieldError(fe govalidator.FieldError) error {
	return fmt.Errorf("%s %s", strings.ToLower(fe.Field()), validator.ValidationErrorMessage(fe))
}

// publish is best effort: the write has already succeeded.
func (s *productService) publish(ctx context.Context, msg event.Message) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "error publishing product event",
			slog.String("topic", msg.Topic),
			slog.Any("error", err),
		)
	}
}

// newProductID returns 32 hex characters from a random v4 UUID (122 random
// bits). Uniqueness is not checked; collisions become likely only around 2^61 ids.
func newProductID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:]), nil
}
