package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillfold/tillfold-core/internal/checkout"
)

// Line is one priced, quantity-tracked entry in a sale.
//
// The price is captured when the barcode is first scanned and never
// re-resolved, so catalog edits cannot retroactively change an in-progress
// sale. Qty is always at least 1; removing a line entirely is a separate
// operation.
type Line struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Qty     int             `json:"qty"`
}

// SaleRecord is one committed sale in the ledger.
// Records are immutable once appended: Items is a deep copy of the cart at
// commit time, independent of later cart or catalog mutations.
type SaleRecord struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Items    []Line          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// copyLines clones a line slice. Lines hold only value fields, so a slice
// copy is a deep copy.
func copyLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// checkoutLines converts cart lines to calculator input.
func checkoutLines(lines []Line) []checkout.Line {
	out := make([]checkout.Line, len(lines))
	for i, l := range lines {
		out[i] = checkout.Line{Price: l.Price, Qty: l.Qty}
	}
	return out
}
