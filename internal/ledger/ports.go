package ledger

import (
	"context"
	"time"

	"factoring/internal/core"
)

// Filter selects records for aggregation. Either RevenueSource or Customer
// is set depending on the aggregation mode; the date range is inclusive on
// both ends.
type Filter struct {
	RevenueSource string
	Customer      string
	From          time.Time
	To            time.Time
}

// RecordStore is the injected persistence capability for invoice records.
// The core validator and aggregator never touch storage directly; they
// receive and return plain data through this boundary.
type RecordStore interface {
	// InsertIfAbsent stores the record unless one with the same
	// (invoice number, customer) identity already exists. It returns
	// false, without error, when the record was skipped as a duplicate.
	InsertIfAbsent(ctx context.Context, r core.Record) (bool, error)

	// Query returns records matching the filter.
	Query(ctx context.Context, f Filter) ([]core.Record, error)

	// ListAll returns every stored record.
	ListAll(ctx context.Context) ([]core.Record, error)

	// RevenueSources returns the distinct revenue source labels.
	RevenueSources(ctx context.Context) ([]string, error)

	// DeleteAll wipes the store. There is no partial delete path.
	DeleteAll(ctx context.Context) error
}
