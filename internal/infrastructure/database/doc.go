// Package database manages the SQLite connection and schema migrations.
//
// The database holds the two durable stores of Tillfold Core: the product
// catalog and the append-only sales ledger. Repositories in other packages
// receive the open connection; this package owns pragmas, the single-writer
// pool, and versioned migrations embedded into the binary.
package database
