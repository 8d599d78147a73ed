package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"powercli/internal/config"
	"powercli/internal/infrastructure"
	"powercli/internal/pipeline"
)

func main() {
	rawFile := flag.String("in", "", "raw input file (defaults to the configured pipeline.raw_file)")
	outDir := flag.String("out", "", "output directory for processed CSV files (defaults to the configured pipeline.processed_dir)")
	freq := flag.String("freq", "", "resample frequency, e.g. H, D, 15min (defaults to the configured pipeline.resample_freq)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override config.
	if *rawFile != "" {
		cfg.Pipeline.RawFile = *rawFile
	}
	if *outDir != "" {
		cfg.Pipeline.ProcessedDir = *outDir
	}
	if *freq != "" {
		cfg.Pipeline.ResampleFreq = *freq
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	ctx := infrastructure.EnsureRunID(context.Background())
	logger = infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), "preprocessor")

	tracing, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer tracing.Shutdown(ctx)

	logger.InfoContext(ctx, "Starting household power preprocessing",
		slog.String("input", cfg.Pipeline.RawFile),
		slog.String("output_dir", cfg.Pipeline.ProcessedDir),
		slog.String("resample_freq", cfg.Pipeline.ResampleFreq))

	runner := pipeline.New(cfg.Pipeline, logger, tracing)
	result, err := runner.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Preprocessing failed", "error", err)
		tracing.Shutdown(ctx)
		infrastructure.CloseLogger()
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Data preprocessing complete",
		slog.String("processed", result.ProcessedPath),
		slog.String("resampled", result.ResampledPath),
		slog.Duration("duration", result.Duration))
}
