package core

import (
	"encoding/json"
	"testing"
)

func validRaw() RawRecord {
	return RawRecord{
		FieldDate:            "2024-03-15",
		FieldInvoiceNumber:   "INV-001",
		FieldValue:           json.Number("100.00"),
		FieldHaircutPercent:  json.Number("10"),
		FieldDailyFeePercent: json.Number("1"),
		FieldCurrency:        "USD",
		FieldRevenueSource:   "Factoring",
		FieldCustomer:        "Acme",
		FieldPaymentDuration: json.Number("5"),
	}
}

func TestValidateBatch(t *testing.T) {
	t.Run("valid batch", func(t *testing.T) {
		records, err := ValidateBatch([]RawRecord{validRaw()})
		if err != nil {
			t.Fatalf("ValidateBatch: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		r := records[0]
		if r.InvoiceNumber != "INV-001" {
			t.Errorf("invoice number = %q", r.InvoiceNumber)
		}
		if r.Currency != USD {
			t.Errorf("currency = %q", r.Currency)
		}
		if !r.Value.Equal(mustDecimal(t, "100.00")) {
			t.Errorf("value = %s", r.Value)
		}
		if r.ExpectedPaymentDuration != 5 {
			t.Errorf("duration = %d", r.ExpectedPaymentDuration)
		}
		if r.Date.Year() != 2024 || int(r.Date.Month()) != 3 || r.Date.Day() != 15 {
			t.Errorf("date = %v", r.Date)
		}
	})

	t.Run("trims revenue source and customer", func(t *testing.T) {
		raw := validRaw()
		raw[FieldCustomer] = "  Acme  "
		raw[FieldRevenueSource] = "\tFactoring "
		records, err := ValidateBatch([]RawRecord{raw})
		if err != nil {
			t.Fatalf("ValidateBatch: %v", err)
		}
		if records[0].Customer != "Acme" {
			t.Errorf("customer = %q, want %q", records[0].Customer, "Acme")
		}
		if records[0].RevenueSource != "Factoring" {
			t.Errorf("revenue source = %q, want %q", records[0].RevenueSource, "Factoring")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		records, err := ValidateBatch(nil)
		if err != nil {
			t.Fatalf("ValidateBatch: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("expected no records, got %d", len(records))
		}
	})
}

func TestValidateBatchRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(RawRecord)
		wantErr error
	}{
		{
			name:    "missing column",
			mutate:  func(r RawRecord) { delete(r, FieldValue) },
			wantErr: ErrMissingColumns,
		},
		{
			name:    "missing quirk-spelled column",
			mutate:  func(r RawRecord) { delete(r, FieldDailyFeePercent) },
			wantErr: ErrMissingColumns,
		},
		{
			name:    "negative value",
			mutate:  func(r RawRecord) { r[FieldValue] = json.Number("-1") },
			wantErr: ErrNegativeValue,
		},
		{
			name:    "unparseable value",
			mutate:  func(r RawRecord) { r[FieldValue] = "not a number" },
			wantErr: ErrNegativeValue,
		},
		{
			name:    "invalid date",
			mutate:  func(r RawRecord) { r[FieldDate] = "yesterday" },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "negative haircut",
			mutate:  func(r RawRecord) { r[FieldHaircutPercent] = json.Number("-0.5") },
			wantErr: ErrNegativeHaircut,
		},
		{
			name:    "negative daily fee",
			mutate:  func(r RawRecord) { r[FieldDailyFeePercent] = json.Number("-2") },
			wantErr: ErrNegativeDailyFee,
		},
		{
			name:    "unknown currency",
			mutate:  func(r RawRecord) { r[FieldCurrency] = "XYZ" },
			wantErr: ErrInvalidCurrency,
		},
		{
			name:    "unparseable duration",
			mutate:  func(r RawRecord) { r[FieldPaymentDuration] = "soon" },
			wantErr: ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := validRaw()
			tt.mutate(bad)
			// A single bad record rejects the whole batch, valid rows included.
			records, err := ValidateBatch([]RawRecord{validRaw(), bad})
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if records != nil {
				t.Fatalf("expected no records on rejection")
			}
		})
	}
}

func TestValidateBatchCheckOrder(t *testing.T) {
	// A record that violates several checks at once must fail on the first
	// one in the fixed order: value before date before currency.
	raw := validRaw()
	raw[FieldValue] = json.Number("-1")
	raw[FieldDate] = "garbage"
	raw[FieldCurrency] = "XYZ"

	_, err := ValidateBatch([]RawRecord{raw})
	if err != ErrNegativeValue {
		t.Fatalf("err = %v, want %v", err, ErrNegativeValue)
	}
}

func TestValidateBatchCoercions(t *testing.T) {
	raw := validRaw()
	raw[FieldValue] = "250.50"               // string numeric
	raw[FieldHaircutPercent] = float64(12.5) // raw float
	raw[FieldPaymentDuration] = "30"         // string integer

	records, err := ValidateBatch([]RawRecord{raw})
	if err != nil {
		t.Fatalf("ValidateBatch: %v", err)
	}
	if !records[0].Value.Equal(mustDecimal(t, "250.50")) {
		t.Errorf("value = %s", records[0].Value)
	}
	if !records[0].HaircutPercent.Equal(mustDecimal(t, "12.5")) {
		t.Errorf("haircut = %s", records[0].HaircutPercent)
	}
	if records[0].ExpectedPaymentDuration != 30 {
		t.Errorf("duration = %d", records[0].ExpectedPaymentDuration)
	}
}
