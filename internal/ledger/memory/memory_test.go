package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"factoring/internal/core"
	"factoring/internal/ledger"
)

func testRecord(invoice, customer, source string, date time.Time) core.Record {
	return core.Record{
		Date:                    date,
		InvoiceNumber:           invoice,
		Value:                   decimal.NewFromInt(100),
		HaircutPercent:          decimal.NewFromInt(10),
		DailyFeePercent:         decimal.NewFromInt(1),
		Currency:                core.USD,
		RevenueSource:           source,
		Customer:                customer,
		ExpectedPaymentDuration: 5,
	}
}

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := New()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	inserted, err := store.InsertIfAbsent(ctx, testRecord("INV-1", "Acme", "Factoring", date))
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	// Same (invoice, customer) pair is silently skipped.
	inserted, err = store.InsertIfAbsent(ctx, testRecord("INV-1", "Acme", "Other", date))
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Error("duplicate insert reported as inserted")
	}

	// Same invoice number for a different customer is a distinct record.
	inserted, err = store.InsertIfAbsent(ctx, testRecord("INV-1", "Globex", "Factoring", date))
	if err != nil || !inserted {
		t.Fatalf("different customer: inserted=%v err=%v", inserted, err)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("stored records = %d, want 2", len(all))
	}
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := New()
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	mustInsert := func(r core.Record) {
		t.Helper()
		if _, err := store.InsertIfAbsent(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	mustInsert(testRecord("INV-1", "Acme", "Factoring", jan))
	mustInsert(testRecord("INV-2", "Acme", "Consulting", jun))
	mustInsert(testRecord("INV-3", "Globex", "Factoring", jun))

	t.Run("by revenue source and range", func(t *testing.T) {
		got, err := store.Query(ctx, ledger.Filter{
			RevenueSource: "Factoring",
			From:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			To:            time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 || got[0].InvoiceNumber != "INV-1" {
			t.Fatalf("got %v, want just INV-1", got)
		}
	})

	t.Run("by customer", func(t *testing.T) {
		got, err := store.Query(ctx, ledger.Filter{
			Customer: "Acme",
			From:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			To:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d records, want 2", len(got))
		}
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		got, err := store.Query(ctx, ledger.Filter{
			RevenueSource: "Factoring",
			From:          jan,
			To:            jan,
		})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d records, want 1", len(got))
		}
	})

	t.Run("no match", func(t *testing.T) {
		got, err := store.Query(ctx, ledger.Filter{
			RevenueSource: "Unknown",
			From:          jan,
			To:            jun,
		})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("got %d records, want none", len(got))
		}
	})
}

func TestRevenueSourcesAndReset(t *testing.T) {
	ctx := context.Background()
	store := New()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for i, src := range []string{"Factoring", "Consulting", "Factoring"} {
		r := testRecord("INV-"+string(rune('A'+i)), "Acme", src, date)
		if _, err := store.InsertIfAbsent(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	sources, err := store.RevenueSources(ctx)
	if err != nil {
		t.Fatalf("RevenueSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %v, want 2 distinct", sources)
	}

	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("records after reset = %d, want 0", len(all))
	}

	// A wiped store accepts previously seen identities again.
	inserted, err := store.InsertIfAbsent(ctx, testRecord("INV-A", "Acme", "Factoring", date))
	if err != nil || !inserted {
		t.Fatalf("insert after reset: inserted=%v err=%v", inserted, err)
	}
}
