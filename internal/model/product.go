package model

import (
	"github.com/shopspring/decimal"
)

// Product is the single catalog record. ID is assigned once at creation and
// never changes.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}
