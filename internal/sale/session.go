package sale

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillfold/tillfold-core/internal/catalog"
	"github.com/tillfold/tillfold-core/internal/checkout"
)

// Logger is the minimal logging surface the session needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Session is the in-progress sale for one till. Scans accumulate lines,
// checkout commits them to the ledger and resets the cart for the next
// customer.
//
// All methods are safe for concurrent use; HTTP handlers and the scanner
// event bridge mutate the same session.
type Session struct {
	mu       sync.Mutex
	lines    []Line
	index    map[string]int // barcode -> position in lines
	resolver *catalog.Resolver
	ledger   Repository
	logger   Logger
	now      func() time.Time
}

// NewSession creates an empty session backed by the given resolver and
// ledger.
func NewSession(resolver *catalog.Resolver, ledger Repository) *Session {
	return &Session{
		index:    make(map[string]int),
		resolver: resolver,
		ledger:   ledger,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger attaches a logger. Safe to call before the session is shared.
func (s *Session) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// AddByBarcode resolves a barcode and adds it to the cart. A barcode already
// in the cart has its quantity bumped instead of gaining a second line. The
// resolved price is snapshotted on the line; later catalog edits do not
// affect it. Unknown barcodes still produce a line, priced at zero.
func (s *Session) AddByBarcode(barcode string) Line {
	item := s.resolver.Resolve(barcode)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[barcode]; ok {
		s.lines[i].Qty++
		return s.lines[i]
	}

	line := Line{
		Barcode: barcode,
		Name:    item.Name,
		Price:   item.Price,
		Qty:     1,
	}
	s.index[barcode] = len(s.lines)
	s.lines = append(s.lines, line)
	return line
}

// Increment bumps the quantity of an existing line. Unknown barcodes are
// ignored.
func (s *Session) Increment(barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[barcode]; ok {
		s.lines[i].Qty++
	}
}

// Decrement lowers the quantity of an existing line, flooring at 1. Dropping
// a line entirely is Remove's job. Unknown barcodes are ignored.
func (s *Session) Decrement(barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[barcode]; ok && s.lines[i].Qty > 1 {
		s.lines[i].Qty--
	}
}

// Remove deletes a line from the cart regardless of quantity. Removing a
// barcode that is not in the cart is a no-op.
func (s *Session) Remove(barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[barcode]
	if !ok {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	delete(s.index, barcode)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].Barcode] = j
	}
}

// Clear abandons the sale, dropping every line without touching the ledger.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// reset empties the cart. Caller must hold mu.
func (s *Session) reset() {
	s.lines = nil
	s.index = make(map[string]int)
}

// Lines returns a copy of the current cart in scan order.
func (s *Session) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

// Totals computes the running subtotal, tax, and total for the cart.
func (s *Session) Totals() checkout.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return checkout.ComputeTotals(checkoutLines(s.lines))
}

// Checkout commits the cart as one immutable ledger record and empties the
// session. An empty cart returns ErrEmptyCart. If the append fails the cart
// is left intact so the operator can retry, and the error wraps
// ErrPersistence.
func (s *Session) Checkout(ctx context.Context) (*SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := checkout.ComputeTotals(checkoutLines(s.lines))
	rec := &SaleRecord{
		ID:       uuid.New().String(),
		Date:     s.now().UTC(),
		Items:    copyLines(s.lines),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
	}

	if err := s.ledger.Append(ctx, rec); err != nil {
		s.logger.Error("sale commit failed", "sale_id", rec.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.reset()
	s.logger.Info("sale committed",
		"sale_id", rec.ID,
		"items", len(rec.Items),
		"total", rec.Total.String(),
	)
	return rec, nil
}
