package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CNY Currency = "CNY"
)

type (
	// Currency is one of the fixed set of supported currency codes.
	Currency string

	// Record is a single validated invoice entry. Records are immutable once
	// created; the only delete path is a full store reset.
	Record struct {
		Date            time.Time
		InvoiceNumber   string
		Value           decimal.Decimal
		HaircutPercent  decimal.Decimal
		DailyFeePercent decimal.Decimal
		Currency        Currency
		RevenueSource   string
		Customer        string
		// ExpectedPaymentDuration is the number of days until payment is due.
		ExpectedPaymentDuration int
	}
)

// Validation and query errors. The strings are part of the wire contract
// with upstream clients and must not be reworded.
var (
	ErrMissingColumns   = errors.New("Missing required columns")
	ErrNegativeValue    = errors.New("Negative values found in 'value' column")
	ErrInvalidDate      = errors.New("Invalid date values found")
	ErrNegativeHaircut  = errors.New("Negative values found in 'haircut percent' column")
	ErrNegativeDailyFee = errors.New("Negative values found in 'Daily fee percent' column")
	ErrInvalidCurrency  = errors.New("Invalid currency values found")
	ErrInvalidDuration  = errors.New("Invalid values found in 'Expected payment duration' column")
	ErrNoData           = errors.New("No data found for the given parameters")
)

// Currencies returns the supported set in a stable order.
func Currencies() []Currency {
	return []Currency{USD, EUR, GBP, JPY, CNY}
}

// ParseCurrency reports whether s is a supported currency code.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(s) {
	case USD, EUR, GBP, JPY, CNY:
		return Currency(s), true
	}
	return "", false
}

// Key returns the identity of the record. Two records with the same key are
// considered the same invoice and the second one is skipped on ingestion.
func (r Record) Key() string {
	return r.InvoiceNumber + "\x00" + r.Customer
}
