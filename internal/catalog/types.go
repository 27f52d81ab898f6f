package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is one operator-defined catalog entry, keyed by barcode.
type Product struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks a product for upsert: the barcode and name must be
// non-empty and the price non-negative.
func (p *Product) Validate() error {
	if p.Barcode == "" {
		return fmt.Errorf("%w: barcode is required", ErrInvalidProduct)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	return nil
}
