package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// mockRepo is an in-memory Repository for store tests.
type mockRepo struct {
	products  []Product
	upsertErr error
	deleteErr error
}

func (m *mockRepo) GetByBarcode(_ context.Context, barcode string) (*Product, error) {
	for i := range m.products {
		if m.products[i].Barcode == barcode {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockRepo) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockRepo) Upsert(_ context.Context, product *Product) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for i := range m.products {
		if m.products[i].Barcode == product.Barcode {
			m.products[i] = *product
			return nil
		}
	}
	m.products = append(m.products, *product)
	return nil
}

func (m *mockRepo) Delete(_ context.Context, barcode string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.products {
		if m.products[i].Barcode == barcode {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}

func newTestStore(t *testing.T) (*Store, *mockRepo) {
	t.Helper()

	repo := &mockRepo{}
	store := NewStore(repo)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store, repo
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStore_Upsert(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "100", "Milk 1L", price("1.20")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok := store.Get("100")
	if !ok {
		t.Fatal("Get() did not find upserted product")
	}
	if got.Name != "Milk 1L" || !got.Price.Equal(price("1.20")) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestStore_Upsert_Validation(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		barcode string
		product string
		price   decimal.Decimal
	}{
		{"empty barcode", "", "Milk", price("1.20")},
		{"empty name", "100", "", price("1.20")},
		{"negative price", "100", "Milk", price("-0.01")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upsert(ctx, tt.barcode, tt.product, tt.price)
			if !errors.Is(err, ErrInvalidProduct) {
				t.Errorf("Upsert() error = %v, want ErrInvalidProduct", err)
			}
		})
	}

	if len(repo.products) != 0 {
		t.Errorf("rejected upserts must not persist, repo has %d products", len(repo.products))
	}
	if store.Count() != 0 {
		t.Errorf("rejected upserts must not mutate the store, count = %d", store.Count())
	}
}

func TestStore_Upsert_ZeroPriceAllowed(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Upsert(context.Background(), "free", "Sample", decimal.Zero); err != nil {
		t.Errorf("Upsert() with zero price error = %v", err)
	}
}

func TestStore_Upsert_PersistenceFailure(t *testing.T) {
	store, repo := newTestStore(t)
	repo.upsertErr = errors.New("disk full")

	err := store.Upsert(context.Background(), "100", "Milk", price("1.20"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Upsert() error = %v, want ErrPersistence", err)
	}
	if store.Count() != 0 {
		t.Error("failed persistence must leave the in-memory catalog unchanged")
	}
}

func TestStore_InsertionOrderPreserved(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, p := range []struct{ barcode, name string }{
		{"1", "One"}, {"2", "Two"}, {"3", "Three"},
	} {
		if err := store.Upsert(ctx, p.barcode, p.name, price("1.00")); err != nil {
			t.Fatalf("Upsert(%s) error = %v", p.barcode, err)
		}
	}

	// Updating the first entry keeps its position.
	if err := store.Upsert(ctx, "1", "One Updated", price("1.10")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	var barcodes []string
	for p := range store.All() {
		barcodes = append(barcodes, p.Barcode)
	}

	want := []string{"1", "2", "3"}
	if len(barcodes) != len(want) {
		t.Fatalf("All() yielded %d products, want %d", len(barcodes), len(want))
	}
	for i := range want {
		if barcodes[i] != want[i] {
			t.Errorf("barcodes[%d] = %q, want %q", i, barcodes[i], want[i])
		}
	}
}

func TestStore_All_Restartable(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Upsert(context.Background(), "1", "One", price("1.00")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	seq := store.All()
	for range 2 {
		count := 0
		for range seq {
			count++
		}
		if count != 1 {
			t.Errorf("iteration yielded %d products, want 1", count)
		}
	}
}

func TestStore_Remove(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "100", "Milk", price("1.20")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := store.Remove(ctx, "100"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := store.Get("100"); ok {
		t.Error("Get() found removed product")
	}

	// Removing an absent barcode is a no-op.
	if err := store.Remove(ctx, "100"); err != nil {
		t.Errorf("Remove() of absent barcode error = %v, want nil", err)
	}
}

func TestStore_Load_ReflectsExternalChange(t *testing.T) {
	store, repo := newTestStore(t)
	ctx := context.Background()

	// Simulate another session writing to the persisted catalog.
	repo.products = append(repo.products, Product{
		Barcode: "ext", Name: "External", Price: price("2.00"),
	})

	if _, ok := store.Get("ext"); ok {
		t.Fatal("store should not see external change before reload")
	}

	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := store.Get("ext"); !ok {
		t.Error("store should see external change after reload")
	}
}
