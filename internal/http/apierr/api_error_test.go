package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalog/pkg/zerror"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		message    string
		retryable  bool
	}{
		{
			name:       "name and price required",
			err:        fmt.Errorf("create: %w", apperr.NameAndPriceRequiredErr),
			statusCode: http.StatusBadRequest,
			message:    "Name and price are required",
		},
		{
			name:       "invalid price",
			err:        apperr.InvalidPriceErr.WrapParent(errors.New("can't convert abc to decimal")),
			statusCode: http.StatusBadRequest,
			message:    "Invalid price",
		},
		{
			name:       "not found",
			err:        apperr.ProductNotFoundErr,
			statusCode: http.StatusNotFound,
			message:    "Product not found!",
		},
		{
			name:       "store unavailable",
			err:        fmt.Errorf("list: %w", apperr.StoreErr.WrapParent(errors.New("throttled"))),
			statusCode: http.StatusServiceUnavailable,
			message:    "Service temporarily unavailable",
			retryable:  true,
		},
		{
			name:       "internal zerror hides its message",
			err:        apperr.ProvisioningErr,
			statusCode: http.StatusInternalServerError,
			message:    "Internal Server Error",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			statusCode: http.StatusInternalServerError,
			message:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := apierr.New(tt.err)

			assert.Equal(t, tt.statusCode, res.StatusCode)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.retryable, res.Retryable)
		})
	}
}

func TestZErrorStatusToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apierr.ZErrorStatusToHTTPStatus(zerror.StatusValidationFailed))
	assert.Equal(t, http.StatusGatewayTimeout, apierr.ZErrorStatusToHTTPStatus(zerror.StatusTimeout))
	assert.Equal(t, http.StatusInternalServerError, apierr.ZErrorStatusToHTTPStatus(zerror.StatusUnknown))
	assert.Equal(t, http.StatusInternalServerError, apierr.ZErrorStatusToHTTPStatus(zerror.Status(200)))
}
