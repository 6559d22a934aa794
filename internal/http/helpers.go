package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"factoring/internal/core"
)

// decodeBody decodes a JSON request body. Numbers are kept as json.Number so
// monetary fields reach the validator without a float round trip.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(dateStr))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeBreakdown renders the three totals as JSON numbers with two
// fractional digits.
func writeBreakdown(w http.ResponseWriter, b core.Breakdown) {
	writeJSON(w, http.StatusOK, map[string]json.Number{
		"total_value":   json.Number(b.TotalValue.StringFixed(2)),
		"advance_value": json.Number(b.AdvanceValue.StringFixed(2)),
		"total_fees":    json.Number(b.TotalFees.StringFixed(2)),
	})
}

// recordJSON is the wire shape of a stored record on the debug dump.
type recordJSON struct {
	Date                    string      `json:"date"`
	InvoiceNumber           string      `json:"invoice_number"`
	Value                   json.Number `json:"value"`
	HaircutPercent          json.Number `json:"haircut_percent"`
	DailyFeePercent         json.Number `json:"daily_fee_percent"`
	Currency                string      `json:"currency"`
	RevenueSource           string      `json:"revenue_source"`
	Customer                string      `json:"customer"`
	ExpectedPaymentDuration int         `json:"expected_payment_duration"`
}

func toRecordJSON(rec core.Record) recordJSON {
	return recordJSON{
		Date:                    rec.Date.Format("2006-01-02"),
		InvoiceNumber:           rec.InvoiceNumber,
		Value:                   json.Number(rec.Value.StringFixed(2)),
		HaircutPercent:          json.Number(rec.HaircutPercent.String()),
		DailyFeePercent:         json.Number(rec.DailyFeePercent.String()),
		Currency:                string(rec.Currency),
		RevenueSource:           rec.RevenueSource,
		Customer:                rec.Customer,
		ExpectedPaymentDuration: rec.ExpectedPaymentDuration,
	}
}
