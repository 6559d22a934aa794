package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRates(t *testing.T) {
	rates := DefaultRates()

	rate, ok := rates.Lookup(USD, EUR)
	if !ok {
		t.Fatal("expected USD->EUR rate")
	}
	if !rate.Equal(mustDecimal(t, "0.85")) {
		t.Errorf("USD->EUR = %s, want 0.85", rate)
	}

	// The table is sparse: no JPY or CNY pairs, and direction matters.
	if _, ok := rates.Lookup(JPY, EUR); ok {
		t.Error("unexpected JPY->EUR rate")
	}
	if _, ok := rates.Lookup(EUR, GBP); ok {
		t.Error("unexpected EUR->GBP rate")
	}
}

func TestLoadRatesFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rates.json")
		content := `[
			{"from": "USD", "to": "EUR", "rate": "0.90"},
			{"from": "JPY", "to": "USD", "rate": "0.0067"}
		]`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write rates file: %v", err)
		}

		rates, err := LoadRatesFile(path)
		if err != nil {
			t.Fatalf("LoadRatesFile: %v", err)
		}
		if rate, ok := rates.Lookup(USD, EUR); !ok || !rate.Equal(mustDecimal(t, "0.90")) {
			t.Errorf("USD->EUR = %s (ok=%v), want 0.90", rate, ok)
		}
		// Pairs not in the file stay missing, even ones the built-in table has.
		if _, ok := rates.Lookup(EUR, USD); ok {
			t.Error("unexpected EUR->USD rate in loaded table")
		}
	})

	t.Run("unsupported currency", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rates.json")
		if err := os.WriteFile(path, []byte(`[{"from":"XXX","to":"EUR","rate":"1"}]`), 0644); err != nil {
			t.Fatalf("write rates file: %v", err)
		}
		if _, err := LoadRatesFile(path); err == nil {
			t.Fatal("expected error for unsupported currency")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadRatesFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
