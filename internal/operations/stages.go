package operations

import (
	"context"
	"fmt"
	"log/slog"

	"gdpetl/internal/config"
	apperrors "gdpetl/internal/errors"
	"gdpetl/internal/exporter"
	"gdpetl/internal/fetch"
	"gdpetl/internal/infrastructure"
	"gdpetl/internal/rates"
	"gdpetl/internal/scrape"
	"gdpetl/internal/transform"
)

// Step identifiers, also the prefixes of the phase-boundary log events.
const (
	StepIDExtract   = "extract"
	StepIDTransform = "transform"
	StepIDLoad      = "load"

	StepNameExtract   = "Table Extraction"
	StepNameTransform = "Currency Transformation"
	StepNameLoad      = "Output Persistence"
)

// ExtractStep fetches the source document, decomposes the indicator
// table and collects the raw multi-source table.
type ExtractStep struct {
	fetcher *fetch.Client
	writer  *exporter.Writer
	source  config.SourceConfig
	saveRaw bool
	logger  *slog.Logger
}

// NewExtractStep creates the extraction step. When saveRaw is set the
// assembled raw table is also snapshotted to the cache directory.
func NewExtractStep(fetcher *fetch.Client, writer *exporter.Writer, source config.SourceConfig, saveRaw bool, logger *slog.Logger) *ExtractStep {
	return &ExtractStep{
		fetcher: fetcher,
		writer:  writer,
		source:  source,
		saveRaw: saveRaw,
		logger:  infrastructure.WithComponent(logger, StepIDExtract),
	}
}

func (s *ExtractStep) ID() string   { return StepIDExtract }
func (s *ExtractStep) Name() string { return StepNameExtract }

// Execute collects the raw table into the run state.
func (s *ExtractStep) Execute(ctx context.Context, state *RunState) error {
	html, err := s.fetcher.Document(ctx, s.source.URL)
	if err != nil {
		return err
	}

	doc, err := scrape.ParseHTML(html)
	if err != nil {
		return err
	}
	table, err := scrape.ParseIndicatorTable(doc, s.source.TableSelector)
	if err != nil {
		return err
	}

	raw := scrape.Collect(table, s.logger)
	s.logger.Info("raw table collected",
		slog.Int("sources", len(raw.Sources)),
		slog.Int("entities", len(raw.Entities)))

	if s.saveRaw {
		if _, err := s.writer.WriteRawSnapshot(raw); err != nil {
			return err
		}
	}

	state.SetRawTable(raw)
	return nil
}

// TransformStep fetches and normalizes the currency rates, then coerces
// and converts the raw table into the target currency.
type TransformStep struct {
	fetcher   *fetch.Client
	ratesCfg  config.RatesConfig
	accessKey string
	currency  string
	logger    *slog.Logger
}

// NewTransformStep creates the transformation step.
func NewTransformStep(fetcher *fetch.Client, ratesCfg config.RatesConfig, accessKey, currency string, logger *slog.Logger) *TransformStep {
	return &TransformStep{
		fetcher:   fetcher,
		ratesCfg:  ratesCfg,
		accessKey: accessKey,
		currency:  currency,
		logger:    infrastructure.WithComponent(logger, StepIDTransform),
	}
}

func (s *TransformStep) ID() string   { return StepIDTransform }
func (s *TransformStep) Name() string { return StepNameTransform }

// Execute converts the collected raw table into the target currency.
func (s *TransformStep) Execute(ctx context.Context, state *RunState) error {
	raw := state.RawTable()
	if raw == nil {
		return apperrors.NewAppError(apperrors.ErrTypeParsing,
			"no raw table collected before transformation", nil)
	}

	quotes, err := s.fetcher.Quotes(ctx, s.ratesCfg.URL, s.accessKey)
	if err != nil {
		return err
	}
	rateTable := rates.Normalize(quotes, s.ratesCfg.BasePrefix)
	state.SetRates(rateTable)

	result, err := transform.Convert(raw, rateTable, s.currency)
	if err != nil {
		return err
	}

	s.logger.Info("table converted",
		slog.String("currency", s.currency),
		slog.Int("entities_in", len(raw.Entities)),
		slog.Int("entities_out", len(result.Entities)))

	state.SetResult(result)
	return nil
}

// LoadStep persists the converted table in the configured format.
type LoadStep struct {
	writer *exporter.Writer
	format exporter.Format
	logger *slog.Logger
}

// NewLoadStep creates the persistence step.
func NewLoadStep(writer *exporter.Writer, format exporter.Format, logger *slog.Logger) *LoadStep {
	return &LoadStep{
		writer: writer,
		format: format,
		logger: infrastructure.WithComponent(logger, StepIDLoad),
	}
}

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return StepNameLoad }

// Execute writes the converted table to durable storage.
func (s *LoadStep) Execute(_ context.Context, state *RunState) error {
	result := state.Result()
	if result == nil {
		return apperrors.NewAppError(apperrors.ErrTypeStorage,
			"no converted table available before persistence", nil)
	}

	path, err := s.writer.Write(result, s.format)
	if err != nil {
		return err
	}

	s.logger.Info("output written", slog.String("path", path))
	state.SetOutputPath(path)
	return nil
}

// describe renders a step for error messages.
func describe(step Step) string {
	return fmt.Sprintf("%s (%s)", step.ID(), step.Name())
}
