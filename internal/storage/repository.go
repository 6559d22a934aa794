package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"factoring/internal/core"
	"factoring/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ledger.RecordStore on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertIfAbsent relies on the unique (invoice_number, customer) index:
// INSERT OR IGNORE reports zero affected rows for a duplicate.
func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, rec core.Record) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertInvoiceSQL,
		rec.Date.Format(dateFormat),
		rec.InvoiceNumber,
		rec.Value.String(),
		rec.HaircutPercent.String(),
		rec.DailyFeePercent.String(),
		string(rec.Currency),
		rec.RevenueSource,
		rec.Customer,
		rec.ExpectedPaymentDuration,
	)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Duplicate invoice skipped",
			"invoice_number", rec.InvoiceNumber,
			"customer", rec.Customer)
		return false, nil
	}
	return true, nil
}

func (r *SQLiteRepository) Query(ctx context.Context, f ledger.Filter) ([]core.Record, error) {
	query := selectInvoicesSQL
	args := []any{}

	if f.RevenueSource != "" {
		query += " AND revenue_source = ?"
		args = append(args, f.RevenueSource)
	}
	if f.Customer != "" {
		query += " AND customer = ?"
		args = append(args, f.Customer)
	}
	// Dates are stored as YYYY-MM-DD, so lexical BETWEEN matches the
	// inclusive calendar range.
	query += " AND date BETWEEN ? AND ? ORDER BY id"
	args = append(args, f.From.Format(dateFormat), f.To.Format(dateFormat))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectInvoicesSQL+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *SQLiteRepository) RevenueSources(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectRevenueSourcesSQL)
	if err != nil {
		return nil, fmt.Errorf("list revenue sources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan revenue source: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteAllInvoicesSQL); err != nil {
		return fmt.Errorf("delete invoices: %w", err)
	}
	slog.InfoContext(ctx, "Invoice store wiped")
	return nil
}
