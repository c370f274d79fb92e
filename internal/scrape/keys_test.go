package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gdpetl/internal/errors"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"World Bank", "WB"},
		{"International Monetary Fund", "IMF"},
		{"United Nations", "UN"},
		{"World", "W"},
		{"lower case words", "lcw"},
		{"  padded   label  ", "pl"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := DeriveKey(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(strings.Fields(tt.label)), len([]rune(got)))
		})
	}
}

func TestDeriveKey_Degenerate(t *testing.T) {
	for _, label := range []string{"", "   ", "\t\n"} {
		_, err := DeriveKey(label)
		require.Error(t, err, "label %q", label)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	}
}
