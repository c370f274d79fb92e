package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "gdpetl/internal/errors"
	"gdpetl/pkg/contracts/domain"
)

// dataRowCellCount is the structural signature of a data row: rank,
// entity name, value. Header, footer and annotation rows all carry a
// different cell count and self-exclude.
const dataRowCellCount = 3

// Entry is one (entity, raw value) pair read from a source sub-table,
// in row order.
type Entry struct {
	Name string
	Raw  string
}

// sourceSection pairs a discovered source with its sub-table body. The
// pairing is built positionally in a single pass, so the i-th header
// label and the i-th sub-table can never drift apart after construction.
type sourceSection struct {
	source domain.Source
	body   *goquery.Selection
}

// IndicatorTable is the decomposed multi-source table: an ordered list
// of (source, sub-table) sections in document order.
type IndicatorTable struct {
	sections []sourceSection
}

// ParseHTML parses raw document text into a navigable node tree.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.NewParsingError("document is not parseable HTML", err)
	}
	return doc, nil
}

// ParseIndicatorTable locates the single indicator table matched by
// selector and decomposes it: one source label per header cell, one
// nested sub-table per source, paired by position. A header/sub-table
// count mismatch means the document shape changed and is fatal.
func ParseIndicatorTable(doc *goquery.Document, selector string) (*IndicatorTable, error) {
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("indicator table %q not found in document", selector), nil)
	}

	var labels []string
	table.Find("tr").First().Find("th").Each(func(_ int, cell *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(cell.Text()))
	})
	if len(labels) == 0 {
		return nil, apperrors.NewParsingError("indicator table has no header labels", nil)
	}

	subTables := table.Find("table")
	if subTables.Length() != len(labels) {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("header/sub-table mismatch: %d labels, %d sub-tables",
				len(labels), subTables.Length()), nil)
	}

	sections := make([]sourceSection, 0, len(labels))
	for i, label := range labels {
		key, err := DeriveKey(label)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sourceSection{
			source: domain.Source{Label: label, Key: key},
			body:   subTables.Eq(i),
		})
	}

	return &IndicatorTable{sections: sections}, nil
}

// Sources returns the discovered sources in document order.
func (t *IndicatorTable) Sources() []domain.Source {
	sources := make([]domain.Source, 0, len(t.sections))
	for _, sec := range t.sections {
		sources = append(sources, sec.source)
	}
	return sources
}

// SeriesFor returns the ordered (entity, raw value) entries of the
// sub-table belonging to key. Requesting a key that was never discovered
// is a "source not found" error.
func (t *IndicatorTable) SeriesFor(key string) ([]Entry, error) {
	for _, sec := range t.sections {
		if sec.source.Key == key {
			return extractSeries(sec.body), nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("source %q", key))
}

// extractSeries walks a sub-table's rows and collects the qualifying
// data rows. The entity name prefers the first anchor child of the name
// cell; both fields are whitespace-trimmed.
func extractSeries(body *goquery.Selection) []Entry {
	var entries []Entry
	body.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if !isDataRow(cells) {
			return
		}
		entries = append(entries, Entry{
			Name: cellText(cells.Eq(1)),
			Raw:  strings.TrimSpace(cells.Eq(2).Text()),
		})
	})
	return entries
}

// isDataRow is the structural filter protecting against header, footer
// and annotation noise: only rows with exactly three data cells qualify.
func isDataRow(cells *goquery.Selection) bool {
	return cells.Length() == dataRowCellCount
}

func cellText(cell *goquery.Selection) string {
	if anchor := cell.Find("a").First(); anchor.Length() > 0 {
		return strings.TrimSpace(anchor.Text())
	}
	return strings.TrimSpace(cell.Text())
}
