package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator is a validator that validates the given struct.
type Validator interface {
	// Validate validates the given struct
	Validate(s any) error
}

type DefaultValidator struct {
	v *validator.Validate
}

// NewDefaultValidator creates a new default validator.
// It returns a new DefaultValidator and an error if the validator registration fails.
func NewDefaultValidator() (*DefaultValidator, error) {
	v := validator.New()

	if err := v.RegisterValidation("decimal", validateDecimal); err != nil {
		return nil, fmt.Errorf("register decimal validator: %w", err)
	}

	return &DefaultValidator{v: v}, nil
}

// MustNewDefaultValidator is like NewDefaultValidator but panics on registration failure.
func MustNewDefaultValidator() *DefaultValidator {
	v, err := NewDefaultValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func (v DefaultValidator) Validate(s any) error {
	return v.v.Struct(s)
}

// ValidationErrors returns the field errors held by err, if err is a validation error.
func ValidationErrors(err error) (validator.ValidationErrors, bool) {
	errs, ok := err.(validator.ValidationErrors)
	return errs, ok
}

func ValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "decimal":
		return "must be a decimal number"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return "is invalid"
	}
}

const (
	maxDecimalDigits   = 20
	maxDecimalExponent = 16
)

// ParseDecimal parses a decimal number, ignoring surrounding whitespace.
// NaN and infinities are rejected, as are values with more than
// maxDecimalDigits digits or an exponent beyond ±maxDecimalExponent.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}

	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return decimal.Decimal{}, fmt.Errorf("decimal exponent %d out of range", exp)
	}
	if n := d.NumDigits(); n > maxDecimalDigits {
		return decimal.Decimal{}, fmt.Errorf("decimal has %d digits, at most %d allowed", n, maxDecimalDigits)
	}

	return d, nil
}

func validateDecimal(fl validator.FieldLevel) bool {
	_, err := ParseDecimal(fl.Field().String())
	return err == nil
}
