package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gdpetl/internal/config"
	apperrors "gdpetl/internal/errors"
	"gdpetl/pkg/contracts/domain"
)

// entityColumn is the header of the row-key column in tabular formats.
const entityColumn = "Country"

// Writer persists converted tables and raw snapshots.
type Writer struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewWriter creates a writer rooted at the application paths.
func NewWriter(paths *config.Paths, logger *slog.Logger) *Writer {
	return &Writer{paths: paths, logger: logger}
}

// Write persists the converted table in the given format and returns
// the path of the written file. The filename is keyed by the lowercase
// target currency, e.g. gdps_gbp.csv.
func (w *Writer) Write(table *domain.ConvertedTable, format Format) (string, error) {
	filename := fmt.Sprintf("gdps_%s.%s", strings.ToLower(table.Currency), format)
	fullPath := w.paths.GetReportPath(filename)

	w.logger.Info("Writing output file",
		slog.String("path", fullPath),
		slog.String("format", string(format)),
		slog.Int("entities", len(table.Entities)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", apperrors.NewStorageError("failed to create reports directory", err)
	}

	var err error
	switch format {
	case FormatCSV:
		err = w.writeCSV(fullPath, table)
	case FormatJSON:
		err = w.writeJSON(fullPath, table)
	case FormatXLSX:
		err = w.writeXLSX(fullPath, table)
	default:
		return "", apperrors.NewStorageError(fmt.Sprintf("unsupported output format %q", format), nil)
	}
	if err != nil {
		return "", err
	}
	return fullPath, nil
}

// writeCSV renders one row per entity with one integer column per
// source key. A UTF-8 BOM is prepended for Excel compatibility.
func (w *Writer) writeCSV(fullPath string, table *domain.ConvertedTable) error {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(&buf)

	header := []string{entityColumn}
	for _, src := range table.Sources {
		header = append(header, src.Key)
	}
	if err := writer.Write(header); err != nil {
		return apperrors.NewStorageError("failed to render csv header", err)
	}

	for _, entity := range table.Entities {
		record := []string{entity}
		for _, src := range table.Sources {
			record = append(record, formatInt(table.Values[src.Key][entity]))
		}
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("failed to render csv record", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to render csv", err)
	}
	return w.flush(fullPath, buf.Bytes())
}

// writeJSON renders an object keyed by source key, each value an object
// keyed by entity name to integer.
func (w *Writer) writeJSON(fullPath string, table *domain.ConvertedTable) error {
	data, err := json.MarshalIndent(table.Values, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to render json", err)
	}
	return w.flush(fullPath, append(data, '\n'))
}

// writeXLSX renders the same grid as writeCSV into a single worksheet.
func (w *Writer) writeXLSX(fullPath string, table *domain.ConvertedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", entityColumn)
	for i, src := range table.Sources {
		col, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return apperrors.NewStorageError("failed to render xlsx header", err)
		}
		f.SetCellValue(sheet, col+"1", src.Key)
	}

	for rowIdx, entity := range table.Entities {
		rowNum := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), entity)
		for i, src := range table.Sources {
			col, err := excelize.ColumnNumberToName(i + 2)
			if err != nil {
				return apperrors.NewStorageError("failed to render xlsx row", err)
			}
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, rowNum), table.Values[src.Key][entity])
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return apperrors.NewStorageError("failed to render xlsx", err)
	}
	return w.flush(fullPath, buf.Bytes())
}

// WriteRawSnapshot persists the uncoerced raw table as JSON under the
// cache directory and returns the written path. Gated by the caller;
// the pipeline runs fine without it.
func (w *Writer) WriteRawSnapshot(raw *domain.RawTable) (string, error) {
	fullPath := w.paths.GetCachePath("raw_gdps.json")

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", apperrors.NewStorageError("failed to create cache directory", err)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", apperrors.NewStorageError("failed to render raw snapshot", err)
	}
	if err := w.flush(fullPath, append(data, '\n')); err != nil {
		return "", err
	}

	w.logger.Info("Raw table snapshot written", slog.String("path", fullPath))
	return fullPath, nil
}

// flush writes fully rendered content to disk in one call.
func (w *Writer) flush(fullPath string, content []byte) error {
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return apperrors.NewStorageError("failed to write output file", err).
			WithContext("file", filepath.Base(fullPath))
	}
	return nil
}
