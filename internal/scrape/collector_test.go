package scrape

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdpetl/internal/shared/testutil"
	"gdpetl/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCollect(t *testing.T) {
	table := parseFixture(t)

	raw := Collect(table, discardLogger())

	assert.Equal(t, []domain.Source{
		{Label: "World Bank", Key: "WB"},
		{Label: "International Monetary Fund", Key: "IMF"},
		{Label: "United Nations", Key: "UN"},
	}, raw.Sources)

	// First-discovered order: WB contributes World and United States,
	// IMF then adds Monaco.
	assert.Equal(t, []string{"World", "United States", "Monaco"}, raw.Entities)

	v, ok := raw.Get("WB", "World")
	require.True(t, ok)
	assert.Equal(t, "87,798,526", v)

	v, ok = raw.Get("IMF", "Monaco")
	require.True(t, ok)
	assert.Equal(t, "N/A", v)

	// UN never covered Monaco; a missing cell stays missing, not zeroed.
	_, ok = raw.Get("UN", "Monaco")
	assert.False(t, ok)
}

func TestCollect_DuplicateKeyLastWriteWins(t *testing.T) {
	html := `<table class="wikitable">
	  <tr><th>World Bank</th><th>Wealth Barometer</th></tr>
	  <tr>
	    <td><table><tr><td>1</td><td>World</td><td>100</td></tr></table></td>
	    <td><table><tr><td>1</td><td>World</td><td>200</td></tr></table></td>
	  </tr>
	</table>`
	doc, err := ParseHTML(html)
	require.NoError(t, err)
	table, err := ParseIndicatorTable(doc, "table.wikitable")
	require.NoError(t, err)

	capture := testutil.NewCaptureHandler()
	raw := Collect(table, capture.Logger())

	// Both labels derive "WB"; one column survives with the later
	// section's values, and the collision is logged.
	require.Len(t, raw.Sources, 1)
	assert.Equal(t, "World Bank", raw.Sources[0].Label)

	v, ok := raw.Get("WB", "World")
	require.True(t, ok)
	assert.Equal(t, "200", v)

	var warned bool
	for _, rec := range capture.Records() {
		if rec.Level == slog.LevelWarn {
			warned = true
		}
	}
	assert.True(t, warned, "expected a collision warning")
}
