// Package sale implements the cart engine and the append-only sales ledger.
//
// A Session accumulates scanned lines with prices snapshotted at scan time,
// computes running totals through the checkout calculator, and commits as a
// single immutable SaleRecord. Committed records are persisted via a
// Repository and can be exported as CSV for back-office use.
package sale
