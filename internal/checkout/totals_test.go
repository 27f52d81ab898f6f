package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []Line
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "empty cart",
			lines:        nil,
			wantSubtotal: "0",
			wantTax:      "0",
			wantTotal:    "0",
		},
		{
			name: "chocolate and notebook",
			lines: []Line{
				{Price: money("2.29"), Qty: 2},
				{Price: money("4.99"), Qty: 1},
			},
			wantSubtotal: "9.57",
			wantTax:      "0.67",
			wantTotal:    "10.24",
		},
		{
			name: "single item",
			lines: []Line{
				{Price: money("1.49"), Qty: 1},
			},
			wantSubtotal: "1.49",
			wantTax:      "0.10", // 0.1043 rounds down
			wantTotal:    "1.59",
		},
		{
			name: "zero priced unknown item",
			lines: []Line{
				{Price: decimal.Zero, Qty: 3},
			},
			wantSubtotal: "0",
			wantTax:      "0",
			wantTotal:    "0",
		},
		{
			name: "rounding half up",
			lines: []Line{
				// 0.50 * 0.07 = 0.035, rounds up to 0.04
				{Price: money("0.50"), Qty: 1},
			},
			wantSubtotal: "0.50",
			wantTax:      "0.04",
			wantTotal:    "0.54",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines)

			if !got.Subtotal.Equal(money(tt.wantSubtotal)) {
				t.Errorf("Subtotal = %s, want %s", got.Subtotal, tt.wantSubtotal)
			}
			if !got.Tax.Equal(money(tt.wantTax)) {
				t.Errorf("Tax = %s, want %s", got.Tax, tt.wantTax)
			}
			if !got.Total.Equal(money(tt.wantTotal)) {
				t.Errorf("Total = %s, want %s", got.Total, tt.wantTotal)
			}
		})
	}
}

func TestComputeTotals_TotalIsSubtotalPlusTax(t *testing.T) {
	carts := [][]Line{
		{{Price: money("0.01"), Qty: 1}},
		{{Price: money("19.99"), Qty: 7}, {Price: money("0.35"), Qty: 2}},
		{{Price: money("2.29"), Qty: 2}, {Price: money("4.99"), Qty: 1}, {Price: money("1.49"), Qty: 5}},
	}

	for _, lines := range carts {
		got := ComputeTotals(lines)
		if !got.Total.Equal(got.Subtotal.Add(got.Tax)) {
			t.Errorf("Total = %s, want Subtotal %s + Tax %s", got.Total, got.Subtotal, got.Tax)
		}
		if !got.Tax.Equal(got.Subtotal.Mul(money("0.07")).Round(2)) {
			t.Errorf("Tax = %s, want round(Subtotal * 0.07)", got.Tax)
		}
	}
}
