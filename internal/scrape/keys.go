package scrape

import (
	"strings"
	"unicode/utf8"

	apperrors "gdpetl/internal/errors"
)

// DeriveKey turns a multi-word source label into its short key: the
// first character of each whitespace-separated word, concatenated in
// order with case preserved ("World Bank" -> "WB"). The key length
// always equals the label's word count.
func DeriveKey(label string) (string, error) {
	words := strings.Fields(label)
	if len(words) == 0 {
		return "", apperrors.NewParsingError("cannot derive key from empty source label", nil)
	}

	var b strings.Builder
	for _, word := range words {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String(), nil
}
