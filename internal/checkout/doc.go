// Package checkout computes sale totals.
//
// The calculator is a pure function over cart lines with a fixed 7% tax
// rate. Money is handled as decimals end to end; the only rounding point
// is the tax amount, rounded half-up to two places.
package checkout
