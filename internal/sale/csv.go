package sale

import (
	"strconv"
	"strings"
	"time"
)

// ExportCSV renders the sales history as a CSV document with a header row.
// Every field is quoted, including ones without special characters, and
// embedded quotes are doubled. Line items are flattened into a single
// "Name x2; Other x1" style field.
func ExportCSV(records []SaleRecord) []byte {
	var b strings.Builder

	writeCSVRow(&b, []string{"Date", "Items", "Subtotal", "Tax", "Total"})
	for _, rec := range records {
		writeCSVRow(&b, []string{
			rec.Date.UTC().Format(time.RFC3339),
			flattenItems(rec.Items),
			rec.Subtotal.StringFixed(2),
			rec.Tax.StringFixed(2),
			rec.Total.StringFixed(2),
		})
	}

	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func flattenItems(items []Line) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Name + " x" + strconv.Itoa(item.Qty)
	}
	return strings.Join(parts, "; ")
}
