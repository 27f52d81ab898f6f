package catalog

import "errors"

// Domain errors for the catalog package, checked with errors.Is().
var (
	// ErrProductNotFound is returned when a barcode has no catalog entry.
	ErrProductNotFound = errors.New("catalog: product not found")

	// ErrInvalidProduct is returned when product validation fails.
	ErrInvalidProduct = errors.New("catalog: invalid product")

	// ErrPersistence is returned when the backing store cannot be written.
	// Mutations that fail persistence are not applied.
	ErrPersistence = errors.New("catalog: persistence failed")
)
