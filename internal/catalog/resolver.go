package catalog

import "github.com/shopspring/decimal"

// PricedItem is the result of a barcode lookup: what to call the item and
// what to charge for it.
type PricedItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// UnknownItemName is the display name for barcodes nothing recognises.
const UnknownItemName = "Unknown Item"

// demoItems is the built-in fallback table consulted when the operator
// catalog has no entry. It exists so a fresh install can ring up something.
var demoItems = map[string]PricedItem{
	"012345678905": {Name: "Sparkling Water 500ml", Price: decimal.New(149, -2)},
	"123456789012": {Name: "Chocolate Bar", Price: decimal.New(229, -2)},
	"978020137962": {Name: "Notebook", Price: decimal.New(499, -2)},
}

// Resolver resolves a scanned barcode to a priced item.
//
// Resolution order, first match wins: the operator catalog, the built-in
// demo table, then the unknown-item default with a zero price. Resolve is a
// pure read of the current catalog and never fails.
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver backed by the given catalog store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps a barcode to a name and price. A catalog entry always takes
// precedence over the demo table for the same barcode.
func (r *Resolver) Resolve(barcode string) PricedItem {
	if p, ok := r.store.Get(barcode); ok {
		return PricedItem{Name: p.Name, Price: p.Price}
	}

	if item, ok := demoItems[barcode]; ok {
		return item
	}

	return PricedItem{Name: UnknownItemName, Price: decimal.Zero}
}
