package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// RatePair keys the exchange-rate table by source and target currency.
type RatePair struct {
	From Currency
	To   Currency
}

// RateTable maps currency pairs to multiplicative conversion factors.
//
// The table is sparse and directional: a (from, to) entry does not imply the
// reverse pair exists. Lookups for missing pairs are not an error; the
// aggregator leaves such values unconverted and reports the miss to the
// caller instead.
type RateTable map[RatePair]decimal.Decimal

// DefaultRates returns the built-in table. Only the USD↔EUR and USD↔GBP
// pairs are populated.
func DefaultRates() RateTable {
	return RateTable{
		{USD, EUR}: decimal.RequireFromString("0.85"),
		{EUR, USD}: decimal.RequireFromString("1.18"),
		{USD, GBP}: decimal.RequireFromString("0.73"),
		{GBP, USD}: decimal.RequireFromString("1.37"),
	}
}

// Lookup returns the conversion factor for the pair, if present.
func (t RateTable) Lookup(from, to Currency) (decimal.Decimal, bool) {
	rate, ok := t[RatePair{From: from, To: to}]
	return rate, ok
}

type rateFileEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

// LoadRatesFile reads a rate table from a JSON file of
// [{"from":"USD","to":"EUR","rate":"0.85"}, ...] entries. Pairs absent from
// the file stay absent: a loaded table keeps the same missing-pair semantics
// as the built-in one.
func LoadRatesFile(path string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}

	var entries []rateFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse rates file: %w", err)
	}

	table := make(RateTable, len(entries))
	for _, e := range entries {
		from, ok := ParseCurrency(e.From)
		if !ok {
			return nil, fmt.Errorf("rates file: unsupported currency %q", e.From)
		}
		to, ok := ParseCurrency(e.To)
		if !ok {
			return nil, fmt.Errorf("rates file: unsupported currency %q", e.To)
		}
		rate, err := decimal.NewFromString(e.Rate)
		if err != nil {
			return nil, fmt.Errorf("rates file: invalid rate %q for %s->%s: %w", e.Rate, e.From, e.To, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rates file: rate for %s->%s must be positive", e.From, e.To)
		}
		table[RatePair{From: from, To: to}] = rate
	}

	return table, nil
}
