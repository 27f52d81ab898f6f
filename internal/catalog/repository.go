package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines persistence for the product catalog.
// The abstraction keeps the storage mechanism swappable and lets the Store
// be unit-tested against a mock.
type Repository interface {
	// GetByBarcode retrieves a product by barcode.
	// Returns ErrProductNotFound if no entry exists.
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// List retrieves all products in insertion order.
	List(ctx context.Context) ([]Product, error)

	// Upsert inserts a new product or replaces the entry with the same
	// barcode. Existing entries keep their position; new entries append.
	Upsert(ctx context.Context, product *Product) error

	// Delete removes a product by barcode.
	// Returns ErrProductNotFound if no entry exists.
	Delete(ctx context.Context, barcode string) error
}

// SQLiteRepository implements Repository against the products table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed catalog repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByBarcode retrieves a product by barcode.
func (r *SQLiteRepository) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT barcode, name, price, created_at, updated_at
		FROM products
		WHERE barcode = ?`, barcode)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("querying product by barcode: %w", err)
	}
	return product, nil
}

// List retrieves all products ordered by insertion position.
func (r *SQLiteRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT barcode, name, price, created_at, updated_at
		FROM products
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// Upsert inserts or replaces a product. A new barcode takes the next
// position; a replaced one keeps its position so listing order is stable.
func (r *SQLiteRepository) Upsert(ctx context.Context, product *Product) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (barcode, name, price, position, created_at, updated_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM products), ?, ?)
		ON CONFLICT(barcode) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			updated_at = excluded.updated_at`,
		product.Barcode,
		product.Name,
		product.Price.String(),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting product: %w", err)
	}
	return nil
}

// Delete removes a product by barcode.
func (r *SQLiteRepository) Delete(ctx context.Context, barcode string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE barcode = ?", barcode)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanProduct.
type scanner interface {
	Scan(dest ...any) error
}

// scanProduct reads one product row.
func scanProduct(s scanner) (*Product, error) {
	var p Product
	var price, createdAt, updatedAt string

	if err := s.Scan(&p.Barcode, &p.Name, &price, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parsing price %q: %w", price, err)
	}
	p.Price = parsed

	// Timestamp format is controlled by this package.
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck

	return &p, nil
}
