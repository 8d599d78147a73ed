package main

import (
	"flag"
	"log/slog"
	"os"

	"powercli/internal/config"
	"powercli/internal/fetcher"
	"powercli/internal/infrastructure"
)

func main() {
	rawDir := flag.String("raw", "", "directory for the raw dataset (defaults to the configured fetcher.raw_dir)")
	url := flag.String("url", "", "dataset archive URL (defaults to the configured fetcher.dataset_url)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *rawDir != "" {
		cfg.Fetcher.RawDir = *rawDir
	}
	if *url != "" {
		cfg.Fetcher.DatasetURL = *url
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()
	logger = infrastructure.WithComponent(logger, "fetcher")

	f := fetcher.New(cfg.Fetcher, nil, logger)
	if _, err := f.Fetch(); err != nil {
		logger.Error("Download and extraction failed", "error", err)
		infrastructure.CloseLogger()
		os.Exit(1)
	}

	logger.Info("Download and extraction complete",
		slog.String("raw_dir", cfg.Fetcher.RawDir))
}
