package sale

import (
	"context"
	"time"
)

// Receipt is the printable view of a committed sale.
type Receipt struct {
	StoreID  string `json:"store_id"`
	SaleID   string `json:"sale_id"`
	Date     string `json:"date"`
	Items    []Line `json:"items"`
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// PrintSink receives receipts for committed sales. Implementations deliver
// them to whatever printer transport is available; a failed print never
// fails the sale itself.
type PrintSink interface {
	Print(ctx context.Context, r *Receipt) error
}

// BuildReceipt converts a ledger record into its printable form.
func BuildReceipt(storeID string, rec *SaleRecord) *Receipt {
	return &Receipt{
		StoreID:  storeID,
		SaleID:   rec.ID,
		Date:     rec.Date.UTC().Format(time.RFC3339),
		Items:    copyLines(rec.Items),
		Subtotal: rec.Subtotal.StringFixed(2),
		Tax:      rec.Tax.StringFixed(2),
		Total:    rec.Total.StringFixed(2),
	}
}
