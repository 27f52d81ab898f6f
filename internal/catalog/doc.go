// Package catalog owns the operator-defined product set and barcode lookup.
//
// The Store is the single writer of the product catalog: it validates,
// persists through a Repository, and serves lookups from an in-memory copy
// in insertion order. The Resolver layers the built-in demo table and the
// unknown-item default on top, so resolving a scanned barcode always
// produces a priced item.
package catalog
