package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

type priceForm struct {
	Name  string `validate:"required"`
	Price string `validate:"required,decimal"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept valid form", func(t *testing.T) {
		assert.NoError(t, v.Validate(priceForm{Name: "Widget", Price: "9.99"}))
		assert.NoError(t, v.Validate(priceForm{Name: "Widget", Price: " -3 "}))
		assert.NoError(t, v.Validate(priceForm{Name: "Widget", Price: "1e3"}))
	})

	t.Run("Should report required fields", func(t *testing.T) {
		err := v.Validate(priceForm{})
		errs, ok := validator.ValidationErrors(err)
		require.True(t, ok)
		require.Len(t, errs, 2)
		for _, fe := range errs {
			assert.Equal(t, "required", fe.Tag())
			assert.Equal(t, "field is required", validator.ValidationErrorMessage(fe))
		}
	})

	t.Run("Should reject non decimal price", func(t *testing.T) {
		for _, price := range []string{"abc", "NaN", "inf", "9.99.9", "  "} {
			err := v.Validate(priceForm{Name: "Widget", Price: price})
			errs, ok := validator.ValidationErrors(err)
			require.True(t, ok, price)
			require.Len(t, errs, 1, price)
			assert.Equal(t, "decimal", errs[0].Tag(), price)
			assert.Equal(t, "must be a decimal number", validator.ValidationErrorMessage(errs[0]))
		}
	})
}

func TestParseDecimal(t *testing.T) {
	d, err := validator.ParseDecimal(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = validator.ParseDecimal("twelve")
	assert.Error(t, err)

	for _, s := range []string{"1e16", "-1e-16", "12345678901234567890", "1.5e3"} {
		_, err := validator.ParseDecimal(s)
		assert.NoError(t, err, s)
	}
}

func TestParseDecimal_RejectsOutOfRange(t *testing.T) {
	for _, s := range []string{
		"1e900000000",
		"1e-900000000",
		"1e17",
		"0.00000000000000001",
		"123456789012345678901",
	} {
		_, err := validator.ParseDecimal(s)
		assert.Error(t, err, s)
	}

	v := validator.MustNewDefaultValidator()
	err := v.Validate(priceForm{Name: "Widget", Price: "1e900000000"})
	errs, ok := validator.ValidationErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "decimal", errs[0].Tag())
}
