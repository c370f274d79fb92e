// Package rates normalizes the raw quote mapping of the rate feed into
// the bare currency-code table the transformer consumes.
package rates

import (
	"strings"

	"gdpetl/pkg/contracts/domain"
)

// Normalize strips the base currency prefix from every compound quote
// key ("USDGBP" with base "USD" becomes "GBP"). Keys without the prefix
// pass through unchanged; values are untouched.
func Normalize(raw map[string]float64, basePrefix string) domain.RateTable {
	table := make(domain.RateTable, len(raw))
	for key, rate := range raw {
		table[strings.TrimPrefix(key, basePrefix)] = rate
	}
	return table
}
