package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/shopspring/decimal"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the authoritative owner of the product set.
//
// It wraps a Repository and keeps an in-memory copy in insertion order for
// fast lookups during scanning. Every mutation is validated, persisted
// synchronously, and only then applied to the in-memory copy, so a
// persistence failure leaves the observable catalog unchanged.
//
// All public methods are safe for concurrent use.
type Store struct {
	repo Repository

	mu       sync.RWMutex
	products []Product      // insertion order
	index    map[string]int // barcode -> position in products

	logger Logger
}

// NewStore creates a catalog store backed by repo.
// Call Load before first use to populate the in-memory copy.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:   repo,
		index:  make(map[string]int),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Load populates the in-memory copy from the repository.
// It is also the re-read path when another session edits the persisted
// catalog: call it on an external change notification.
func (s *Store) Load(ctx context.Context) error {
	products, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = products
	s.index = make(map[string]int, len(products))
	for i, p := range products {
		s.index[p.Barcode] = i
	}

	s.logger.Info("catalog loaded", "products", len(products))
	return nil
}

// Get returns the product for a barcode, or false if none exists.
func (s *Store) Get(barcode string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[barcode]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Upsert validates and persists a product, then applies it to the in-memory
// copy. An existing barcode keeps its position; a new one appends.
//
// Returns ErrInvalidProduct for a rejected product and ErrPersistence when
// the repository write fails; in both cases the catalog is unchanged.
func (s *Store) Upsert(ctx context.Context, barcode, name string, price decimal.Decimal) error {
	product := &Product{
		Barcode: barcode,
		Name:    name,
		Price:   price,
	}
	if err := product.Validate(); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, product); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[barcode]; ok {
		s.products[i].Name = name
		s.products[i].Price = price
	} else {
		s.index[barcode] = len(s.products)
		s.products = append(s.products, *product)
	}

	s.logger.Debug("product upserted", "barcode", barcode, "name", name)
	return nil
}

// Remove deletes a product by barcode. Removing an absent barcode is a
// no-op; only persistence failures are reported.
func (s *Store) Remove(ctx context.Context, barcode string) error {
	if err := s.repo.Delete(ctx, barcode); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[barcode]
	if !ok {
		return nil
	}

	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.index, barcode)
	for j := i; j < len(s.products); j++ {
		s.index[s.products[j].Barcode] = j
	}

	s.logger.Debug("product removed", "barcode", barcode)
	return nil
}

// List returns a copy of the product set in insertion order.
func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// All returns a restartable sequence over the product set in insertion
// order. Each range over the sequence observes the catalog as of that
// iteration's start.
func (s *Store) All() iter.Seq[Product] {
	return func(yield func(Product) bool) {
		for _, p := range s.List() {
			if !yield(p) {
				return
			}
		}
	}
}

// Count returns the number of products.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
