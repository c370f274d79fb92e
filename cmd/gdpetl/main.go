package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gdpetl/internal/config"
	"gdpetl/internal/exporter"
	"gdpetl/internal/fetch"
	"gdpetl/internal/infrastructure"
	"gdpetl/internal/operations"
	"gdpetl/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	currency := flag.String("currency", "", "target currency code (defaults to output.currency from config)")
	format := flag.String("format", "", "output format: csv, json or xlsx (defaults to output.format from config)")
	sourceURL := flag.String("source", "", "override the source document URL")
	saveRaw := flag.Bool("save-raw", false, "snapshot the uncoerced raw table to the cache directory")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return 0
	}

	// Initialize paths first; everything else resolves relative to them.
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	// Flags override file and environment configuration.
	if *currency != "" {
		cfg.Output.Currency = *currency
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *sourceURL != "" {
		cfg.Source.URL = *sourceURL
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath("gdpetl.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = infrastructure.GetLogger()
	}
	defer infrastructure.CloseLogFile()

	outputFormat, err := exporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		logger.Error("Invalid output format", slog.String("error", err.Error()))
		return 1
	}

	// The credential is required before any network call is made.
	accessKey, err := config.AccessKey(paths)
	if err != nil {
		logger.Error("Access key unavailable", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("Starting GDP pipeline",
		slog.String("source_url", cfg.Source.URL),
		slog.String("currency", cfg.Output.Currency),
		slog.String("format", string(outputFormat)),
		slog.Bool("save_raw", *saveRaw),
		slog.String("executable_dir", paths.ExecutableDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewClient(logger)
	writer := exporter.NewWriter(paths, logger)

	manager := operations.NewManager(logger,
		operations.NewExtractStep(fetcher, writer, cfg.Source, *saveRaw, logger),
		operations.NewTransformStep(fetcher, cfg.Rates, accessKey, cfg.Output.Currency, logger),
		operations.NewLoadStep(writer, outputFormat, logger),
	)

	state, err := manager.Execute(ctx)
	if err != nil {
		logger.Error("Pipeline run failed",
			slog.String("run_id", state.ID),
			slog.String("error", err.Error()))
		return 1
	}

	logger.Info("Pipeline run finished",
		slog.String("run_id", state.ID),
		slog.String("output", state.OutputPath()))
	return 0
}
