package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"factoring/internal/core"
	"factoring/internal/ledger"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "factoring.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func invoice(invoiceNumber, customer, source string, date time.Time, value string) core.Record {
	return core.Record{
		Date:                    date,
		InvoiceNumber:           invoiceNumber,
		Value:                   decimal.RequireFromString(value),
		HaircutPercent:          decimal.RequireFromString("10"),
		DailyFeePercent:         decimal.RequireFromString("1"),
		Currency:                core.USD,
		RevenueSource:           source,
		Customer:                customer,
		ExpectedPaymentDuration: 5,
	}
}

func TestInsertIfAbsentDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	rec := invoice("INV-1", "Acme", "Trucking", date, "100")
	ok, err := repo.InsertIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !ok {
		t.Fatal("first insert should report inserted")
	}

	ok, err = repo.InsertIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("InsertIfAbsent duplicate: %v", err)
	}
	if ok {
		t.Error("duplicate insert should report skipped")
	}

	// same invoice number for a different customer is a distinct record
	other := invoice("INV-1", "Globex", "Trucking", date, "200")
	if ok, err = repo.InsertIfAbsent(ctx, other); err != nil || !ok {
		t.Fatalf("insert for other customer: ok=%v err=%v", ok, err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("stored records = %d, want 2", len(all))
	}
}

func TestQueryFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	seed := []core.Record{
		invoice("INV-1", "Acme", "Trucking", jan, "100"),
		invoice("INV-2", "Acme", "Rail", jun, "250.50"),
		invoice("INV-3", "Globex", "Trucking", jun, "400"),
	}
	for _, rec := range seed {
		if _, err := repo.InsertIfAbsent(ctx, rec); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	got, err := repo.Query(ctx, ledger.Filter{
		RevenueSource: "Trucking",
		From:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Query by source: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Trucking records = %d, want 2", len(got))
	}

	got, err = repo.Query(ctx, ledger.Filter{
		Customer: "Acme",
		From:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Query by customer: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Acme summer records = %d, want 1", len(got))
	}
	if got[0].InvoiceNumber != "INV-2" {
		t.Errorf("invoice = %s, want INV-2", got[0].InvoiceNumber)
	}
	if !got[0].Value.Equal(decimal.RequireFromString("250.50")) {
		t.Errorf("value = %s, want 250.50", got[0].Value)
	}
	if !got[0].Date.Equal(jun) {
		t.Errorf("date = %v, want %v", got[0].Date, jun)
	}

	// bounds are inclusive
	got, err = repo.Query(ctx, ledger.Filter{Customer: "Acme", From: jan, To: jan})
	if err != nil {
		t.Fatalf("Query inclusive bounds: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("records on boundary date = %d, want 1", len(got))
	}

	got, err = repo.Query(ctx, ledger.Filter{
		Customer: "Nobody",
		From:     jan,
		To:       jun,
	})
	if err != nil {
		t.Fatalf("Query no match: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("records for unknown customer = %d, want 0", len(got))
	}
}

func TestRevenueSourcesAndDeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	seed := []core.Record{
		invoice("INV-1", "Acme", "Trucking", date, "100"),
		invoice("INV-2", "Acme", "Rail", date, "200"),
		invoice("INV-3", "Globex", "Rail", date, "300"),
	}
	for _, rec := range seed {
		if _, err := repo.InsertIfAbsent(ctx, rec); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	sources, err := repo.RevenueSources(ctx)
	if err != nil {
		t.Fatalf("RevenueSources: %v", err)
	}
	if len(sources) != 2 {
		t.Errorf("sources = %v, want 2 distinct entries", sources)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll after reset: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("records after reset = %d, want 0", len(all))
	}
}
