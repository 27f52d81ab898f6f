package checkout

import (
	"github.com/shopspring/decimal"
)

// taxRate is the fixed single-rate sales tax applied to every sale.
var taxRate = decimal.New(7, -2) // 0.07

// moneyPlaces is the number of decimal places for monetary presentation.
const moneyPlaces = 2

// Line is the priced, quantity-tracked input to the calculator.
// It mirrors one cart line without depending on the sale package.
type Line struct {
	Price decimal.Decimal
	Qty   int
}

// Totals is the derived money breakdown of a cart.
//
// Subtotal carries full precision; Tax is rounded half-up to two decimal
// places at this boundary, and Total is subtotal plus the rounded tax, so
// Total == Subtotal + Tax always holds exactly.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives subtotal, tax, and total from cart lines.
// It is pure and recomputes from the full cart on every call.
func ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}

	tax := subtotal.Mul(taxRate).Round(moneyPlaces)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
