package sale

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the persistence contract for the sales ledger.
// The ledger is append-only: records are never updated or deleted.
type Repository interface {
	// Append stores one committed sale.
	Append(ctx context.Context, rec *SaleRecord) error

	// List returns all sales in commit order.
	List(ctx context.Context) ([]SaleRecord, error)

	// All iterates sales in commit order without materialising the full
	// history. Each range over the sequence runs a fresh query. Iteration
	// errors are yielded as the second value with a zero record.
	All(ctx context.Context) iter.Seq2[SaleRecord, error]
}

// SQLiteRepository implements Repository backed by the sales table.
// Line items are stored as a JSON document per row; monetary values are
// stored as decimal strings to avoid float drift.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed ledger repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, rec *SaleRecord) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("marshal sale items: %w", err)
	}

	query := `
		INSERT INTO sales (id, date, items, subtotal, tax, total)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Date.UTC().Format(time.RFC3339),
		string(items),
		rec.Subtotal.String(),
		rec.Tax.String(),
		rec.Total.String(),
	)
	if err != nil {
		return fmt.Errorf("insert sale %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]SaleRecord, error) {
	var records []SaleRecord
	for rec, err := range r.All(ctx) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *SQLiteRepository) All(ctx context.Context) iter.Seq2[SaleRecord, error] {
	query := `
		SELECT id, date, items, subtotal, tax, total
		FROM sales
		ORDER BY rowid
	`

	return func(yield func(SaleRecord, error) bool) {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			yield(SaleRecord{}, fmt.Errorf("query sales: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanSale(rows)
			if err != nil {
				yield(SaleRecord{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(SaleRecord{}, fmt.Errorf("iterate sales: %w", err))
		}
	}
}

func scanSale(rows *sql.Rows) (SaleRecord, error) {
	var (
		rec                  SaleRecord
		date                 string
		items                string
		subtotal, tax, total string
	)
	if err := rows.Scan(&rec.ID, &date, &items, &subtotal, &tax, &total); err != nil {
		return SaleRecord{}, fmt.Errorf("scan sale: %w", err)
	}

	var err error
	if rec.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return SaleRecord{}, fmt.Errorf("parse sale date %q: %w", date, err)
	}
	if err = json.Unmarshal([]byte(items), &rec.Items); err != nil {
		return SaleRecord{}, fmt.Errorf("unmarshal sale items: %w", err)
	}
	if rec.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return SaleRecord{}, fmt.Errorf("parse sale subtotal %q: %w", subtotal, err)
	}
	if rec.Tax, err = decimal.NewFromString(tax); err != nil {
		return SaleRecord{}, fmt.Errorf("parse sale tax %q: %w", tax, err)
	}
	if rec.Total, err = decimal.NewFromString(total); err != nil {
		return SaleRecord{}, fmt.Errorf("parse sale total %q: %w", total, err)
	}
	return rec, nil
}
