package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// External field names as they appear on the wire. The mixed spelling
// (lowercase vs capitalized-with-space) is inherited from the upstream
// spreadsheet format and must match exactly.
const (
	FieldDate            = "date"
	FieldInvoiceNumber   = "invoice number"
	FieldValue           = "value"
	FieldHaircutPercent  = "haircut percent"
	FieldDailyFeePercent = "Daily fee percent"
	FieldCurrency        = "currency"
	FieldRevenueSource   = "Revenue source"
	FieldCustomer        = "customer"
	FieldPaymentDuration = "Expected payment duration"
)

var requiredFields = []string{
	FieldDate,
	FieldInvoiceNumber,
	FieldValue,
	FieldHaircutPercent,
	FieldDailyFeePercent,
	FieldCurrency,
	FieldRevenueSource,
	FieldCustomer,
	FieldPaymentDuration,
}

// RawRecord is one loosely-typed row as decoded from the wire format,
// keyed by the external field names above.
type RawRecord map[string]any

// Date layouts accepted on ingestion, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ValidateBatch checks a raw batch against the schema, numeric-range and
// enumeration constraints and returns the canonical records on success.
//
// The whole batch is accepted or rejected as a unit: checks run column by
// column across all rows and the first failing check wins, so there is no
// per-row error reporting. On success the revenue source and customer fields
// are trimmed of surrounding whitespace.
func ValidateBatch(batch []RawRecord) ([]Record, error) {
	for _, raw := range batch {
		for _, f := range requiredFields {
			if _, ok := raw[f]; !ok {
				return nil, ErrMissingColumns
			}
		}
	}

	records := make([]Record, len(batch))

	for i, raw := range batch {
		v, err := toDecimal(raw[FieldValue])
		if err != nil || v.IsNegative() {
			return nil, ErrNegativeValue
		}
		records[i].Value = v
	}

	for i, raw := range batch {
		d, err := toDate(raw[FieldDate])
		if err != nil {
			return nil, ErrInvalidDate
		}
		records[i].Date = d
	}

	for i, raw := range batch {
		h, err := toDecimal(raw[FieldHaircutPercent])
		if err != nil || h.IsNegative() {
			return nil, ErrNegativeHaircut
		}
		records[i].HaircutPercent = h
	}

	for i, raw := range batch {
		f, err := toDecimal(raw[FieldDailyFeePercent])
		if err != nil || f.IsNegative() {
			return nil, ErrNegativeDailyFee
		}
		records[i].DailyFeePercent = f
	}

	for i, raw := range batch {
		cur, ok := ParseCurrency(stringField(raw[FieldCurrency]))
		if !ok {
			return nil, ErrInvalidCurrency
		}
		records[i].Currency = cur
	}

	for i, raw := range batch {
		n, err := toInt(raw[FieldPaymentDuration])
		if err != nil {
			return nil, ErrInvalidDuration
		}
		records[i].ExpectedPaymentDuration = n
	}

	for i, raw := range batch {
		records[i].InvoiceNumber = stringField(raw[FieldInvoiceNumber])
		records[i].RevenueSource = strings.TrimSpace(stringField(raw[FieldRevenueSource]))
		records[i].Customer = strings.TrimSpace(stringField(raw[FieldCustomer]))
	}

	return records, nil
}

// toDecimal coerces a wire value to a decimal. JSON bodies are decoded with
// UseNumber so numbers arrive as json.Number and keep their precision.
func toDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(val))
	case float64:
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	default:
		return decimal.Decimal{}, ErrMissingColumns
	}
}

// toInt truncates toward zero, matching the upstream integer coercion.
func toInt(v any) (int, error) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	case float64:
		return int(val), nil
	case int:
		return val, nil
	case int64:
		return int(val), nil
	default:
		return 0, ErrMissingColumns
	}
}

func toDate(v any) (time.Time, error) {
	s := strings.TrimSpace(stringField(v))
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func stringField(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
