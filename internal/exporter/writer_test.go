package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gdpetl/internal/config"
	"gdpetl/pkg/contracts/domain"
)

func testWriter(t *testing.T) (*Writer, *config.Paths) {
	t.Helper()
	tmpDir := t.TempDir()
	paths := &config.Paths{
		ReportsDir: filepath.Join(tmpDir, "reports"),
		CacheDir:   filepath.Join(tmpDir, "cache"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWriter(paths, logger), paths
}

func sampleTable() *domain.ConvertedTable {
	return &domain.ConvertedTable{
		Currency: "GBP",
		Sources: []domain.Source{
			{Label: "World Bank", Key: "WB"},
			{Label: "International Monetary Fund", Key: "IMF"},
		},
		Entities: []string{"World", "United States"},
		Values: map[string]map[string]int64{
			"WB":  {"World": 64092924, "United States": 15646255},
			"IMF": {"World": 68520611, "United States": 15642221},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"csv", "json", "xlsx"} {
		got, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), got)
	}

	_, err := ParseFormat("parquet")
	require.Error(t, err)
}

func TestWrite_CSV(t *testing.T) {
	writer, paths := testWriter(t)

	path, err := writer.Write(sampleTable(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, paths.GetReportPath("gdps_gbp.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// UTF-8 BOM prefix for Excel, then plain CSV.
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Country", "WB", "IMF"},
		{"World", "64092924", "68520611"},
		{"United States", "15646255", "15642221"},
	}, records)
}

func TestWrite_JSON(t *testing.T) {
	writer, _ := testWriter(t)

	path, err := writer.Write(sampleTable(), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "gdps_gbp.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]map[string]int64
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, int64(64092924), got["WB"]["World"])
	assert.Equal(t, int64(15642221), got["IMF"]["United States"])
}

func TestWrite_XLSX(t *testing.T) {
	writer, _ := testWriter(t)

	path, err := writer.Write(sampleTable(), FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Country", "WB", "IMF"}, rows[0])
	assert.Equal(t, []string{"World", "64092924", "68520611"}, rows[1])
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	writer, _ := testWriter(t)

	_, err := writer.Write(sampleTable(), Format("parquet"))
	require.Error(t, err)
}

func TestWriteRawSnapshot(t *testing.T) {
	writer, paths := testWriter(t)

	raw := domain.NewRawTable([]domain.Source{{Label: "World Bank", Key: "WB"}})
	raw.Set("WB", "World", "87,798,526")

	path, err := writer.WriteRawSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, paths.GetCachePath("raw_gdps.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got domain.RawTable
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"World"}, got.Entities)
	assert.Equal(t, "87,798,526", got.Values["WB"]["World"])
}
