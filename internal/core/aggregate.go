package core

import "github.com/shopspring/decimal"

// Breakdown is the result of a full revenue aggregation. The three totals
// are each rounded to 2 decimal places (half-up).
type Breakdown struct {
	TotalValue   decimal.Decimal
	AdvanceValue decimal.Decimal
	TotalFees    decimal.Decimal

	// Misses lists currency pairs that had no entry in the rate table.
	// Values for those records were summed unconverted, matching the
	// upstream behavior; callers are expected to surface the misses
	// through logging or metrics.
	Misses []RateMiss
}

// RateMiss counts records whose currency pair was absent from the rate table.
type RateMiss struct {
	Pair  RatePair
	Count int
}

var hundred = decimal.NewFromInt(100)

// Aggregate converts each record's value to the target currency where a rate
// pair exists and accumulates the three revenue figures:
//
//	advance  = Σ value × haircut_percent / 100
//	fees     = Σ value × daily_fee_percent × expected_payment_duration / 100
//	total    = Σ value
//
// Rounding is applied once on the final sums, never per record, so the
// encounter order of records does not affect the result.
//
// Aggregate is never invoked on an empty record set: the request-handling
// boundary treats zero matching records as a distinct no-data error before
// reaching this function.
func Aggregate(records []Record, target Currency, rates RateTable) Breakdown {
	var total, advance, fees decimal.Decimal

	missIndex := map[RatePair]int{}
	var misses []RateMiss

	for _, r := range records {
		value := r.Value
		if r.Currency != target {
			if rate, ok := rates.Lookup(r.Currency, target); ok {
				value = value.Mul(rate)
			} else {
				pair := RatePair{From: r.Currency, To: target}
				i, seen := missIndex[pair]
				if !seen {
					missIndex[pair] = len(misses)
					misses = append(misses, RateMiss{Pair: pair})
					i = len(misses) - 1
				}
				misses[i].Count++
			}
		}

		advance = advance.Add(value.Mul(r.HaircutPercent).Div(hundred))
		fees = fees.Add(value.
			Mul(r.DailyFeePercent).
			Mul(decimal.NewFromInt(int64(r.ExpectedPaymentDuration))).
			Div(hundred))
		total = total.Add(value)
	}

	return Breakdown{
		TotalValue:   total.Round(2),
		AdvanceValue: advance.Round(2),
		TotalFees:    fees.Round(2),
		Misses:       misses,
	}
}

// SumValues is the simple-sum aggregation mode: a plain total over the
// records with no currency conversion and no advance or fee terms.
func SumValues(records []Record) decimal.Decimal {
	var total decimal.Decimal
	for _, r := range records {
		total = total.Add(r.Value)
	}
	return total.Round(2)
}
