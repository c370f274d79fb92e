package scrape

import (
	"log/slog"

	"gdpetl/pkg/contracts/domain"
)

// Collect iterates every discovered source in document order and
// assembles the full raw table: source key -> entity name -> raw value
// text. Entity discovery order is preserved across sources.
//
// Two labels deriving the same key is an unvalidated condition in the
// source document; the later section silently overwrites the earlier
// one's values (last write wins), with a warning so the collision is
// visible.
func Collect(table *IndicatorTable, logger *slog.Logger) *domain.RawTable {
	sources := make([]domain.Source, 0, len(table.sections))
	seen := make(map[string]string, len(table.sections))
	for _, sec := range table.sections {
		if prev, ok := seen[sec.source.Key]; ok {
			logger.Warn("duplicate source key, later values overwrite earlier ones",
				slog.String("key", sec.source.Key),
				slog.String("first_label", prev),
				slog.String("second_label", sec.source.Label))
			continue
		}
		seen[sec.source.Key] = sec.source.Label
		sources = append(sources, sec.source)
	}

	raw := domain.NewRawTable(sources)
	for _, sec := range table.sections {
		for _, entry := range extractSeries(sec.body) {
			raw.Set(sec.source.Key, entry.Name, entry.Raw)
		}
		logger.Info("collected source series",
			slog.String("key", sec.source.Key),
			slog.String("label", sec.source.Label),
			slog.Int("entities", len(raw.Values[sec.source.Key])))
	}
	return raw
}
