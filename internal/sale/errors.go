package sale

import "errors"

var (
	// ErrEmptyCart is returned when checkout is attempted with no lines.
	ErrEmptyCart = errors.New("sale: cart is empty")

	// ErrPersistence wraps ledger storage failures. A failed append leaves
	// the cart untouched so the operator can retry.
	ErrPersistence = errors.New("sale: persistence failed")
)
