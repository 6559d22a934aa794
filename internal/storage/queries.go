package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"factoring/internal/core"
)

const dateFormat = "2006-01-02"

const insertInvoiceSQL = `
INSERT OR IGNORE INTO invoices (
	date, invoice_number, value, haircut_percent, daily_fee_percent,
	currency, revenue_source, customer, expected_payment_duration
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// selectInvoicesSQL carries a `WHERE 1=1` so callers can append filter
// clauses unconditionally.
const selectInvoicesSQL = `
SELECT date, invoice_number, value, haircut_percent, daily_fee_percent,
       currency, revenue_source, customer, expected_payment_duration
FROM invoices WHERE 1=1`

const selectRevenueSourcesSQL = `
SELECT DISTINCT revenue_source FROM invoices ORDER BY revenue_source`

const deleteAllInvoicesSQL = `DELETE FROM invoices`

// scanRecords reads invoice rows into domain records. Monetary and percent
// columns are stored as decimal strings to avoid float drift.
func scanRecords(rows *sql.Rows) ([]core.Record, error) {
	var out []core.Record
	for rows.Next() {
		var (
			rec                    core.Record
			date                   string
			value, haircut, dailyF string
			currency               string
		)
		if err := rows.Scan(&date, &rec.InvoiceNumber, &value, &haircut, &dailyF,
			&currency, &rec.RevenueSource, &rec.Customer, &rec.ExpectedPaymentDuration); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}

		d, err := time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		rec.Date = d

		if rec.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("parse stored value %q: %w", value, err)
		}
		if rec.HaircutPercent, err = decimal.NewFromString(haircut); err != nil {
			return nil, fmt.Errorf("parse stored haircut %q: %w", haircut, err)
		}
		if rec.DailyFeePercent, err = decimal.NewFromString(dailyF); err != nil {
			return nil, fmt.Errorf("parse stored daily fee %q: %w", dailyF, err)
		}
		rec.Currency = core.Currency(currency)

		out = append(out, rec)
	}
	return out, rows.Err()
}
