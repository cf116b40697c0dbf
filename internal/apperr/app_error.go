package apperr

import "github.com/tuanvumaihuynh/product-catalog/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	NameAndPriceRequiredCode = "NAME_AND_PRICE_REQUIRED"
	InvalidPriceCode         = "INVALID_PRICE"
	ProductNotFoundCode      = "PRODUCT_NOT_FOUND"
	ProvisioningErrorCode    = "PROVISIONING_FAILED"
	StoreErrorCode           = "STORE_UNAVAILABLE"
)

var (
	ValidationErr           = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	NameAndPriceRequiredErr = zerror.NewValidationFailed(NameAndPriceRequiredCode, "Name and price are required")
	InvalidPriceErr         = zerror.NewValidationFailed(InvalidPriceCode, "Invalid price")

	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "Product not found!")

	// ProvisioningErr is fatal at startup: the process must not accept traffic.
	ProvisioningErr = zerror.NewInternalServerError(ProvisioningErrorCode, "table provisioning failed")

	StoreErr = zerror.NewServiceUnavailable(StoreErrorCode, "Service temporarily unavailable")
)
