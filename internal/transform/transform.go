// Package transform coerces the raw text table into typed integers in
// the target currency.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "gdpetl/internal/errors"
	"gdpetl/pkg/contracts/domain"
)

// groupingSeparator is the locale grouping character stripped from every
// cell before coercion, wherever it appears.
const groupingSeparator = ","

// Convert turns the raw table into a converted table in currency:
// grouping separators are stripped, cells are coerced to numbers, any
// entity with a missing or malformed cell under any source is dropped
// whole, and the survivors are multiplied by the currency's rate and
// rounded to the nearest integer. Ties round half to even
// (math.RoundToEven), so 2.5 becomes 2 and 3.5 becomes 4.
//
// A currency absent from rates is fatal; malformed cells never are.
// The output preserves the raw table's entity order and is identical
// across repeated calls on the same inputs.
func Convert(raw *domain.RawTable, rates domain.RateTable, currency string) (*domain.ConvertedTable, error) {
	rate, ok := rates[currency]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("rate for currency %q", currency))
	}

	out := &domain.ConvertedTable{
		Currency: currency,
		Sources:  raw.Sources,
		Values:   make(map[string]map[string]int64, len(raw.Sources)),
	}
	for _, src := range raw.Sources {
		out.Values[src.Key] = make(map[string]int64)
	}

	for _, entity := range raw.Entities {
		row, ok := coerceRow(raw, entity)
		if !ok {
			continue
		}
		out.Entities = append(out.Entities, entity)
		for key, value := range row {
			out.Values[key][entity] = int64(math.RoundToEven(value * rate))
		}
	}

	return out, nil
}

// coerceRow parses the entity's cell under every source. The row
// qualifies only if every source has a valid numeral for it.
func coerceRow(raw *domain.RawTable, entity string) (map[string]float64, bool) {
	row := make(map[string]float64, len(raw.Sources))
	for _, src := range raw.Sources {
		cell, ok := raw.Get(src.Key, entity)
		if !ok {
			return nil, false
		}
		value, err := parseNumeral(cell)
		if err != nil {
			return nil, false
		}
		row[src.Key] = value
	}
	return row, true
}

// parseNumeral strips grouping separators and coerces the remaining
// text to a decimal number. Only finite values qualify: ParseFloat also
// accepts spellings like "NaN" and "Inf", which are malformed cells
// here, not numbers.
func parseNumeral(cell string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), groupingSeparator, "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("non-finite numeral %q", cell)
	}
	return value, nil
}
