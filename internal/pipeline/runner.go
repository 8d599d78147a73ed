package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"powercli/internal/config"
	"powercli/internal/dataprocessing"
	"powercli/internal/dataset"
	"powercli/internal/exporter"
	"powercli/internal/infrastructure"
)

// Result summarizes a completed pipeline run.
type Result struct {
	RunID         string
	RowsLoaded    int
	RowsCleaned   int
	FeatureRows   int
	ResampledRows int
	ProcessedPath string
	ResampledPath string
	Duration      time.Duration
}

// Runner executes the preprocessing pipeline once, as a linear sequence of
// in-memory transformations: load, clean, derive features, resample,
// write. Each run owns its table exclusively; there is no shared mutable
// state across runs.
type Runner struct {
	cfg     config.PipelineConfig
	logger  *slog.Logger
	tracing *infrastructure.Tracing
}

// New creates a pipeline runner.
func New(cfg config.PipelineConfig, logger *slog.Logger, tracing *infrastructure.Tracing) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger, tracing: tracing}
}

// Run executes the full pipeline and fails fast on the first stage error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	started := time.Now()

	result := &Result{
		RunID:         infrastructure.GetRunID(ctx),
		ProcessedPath: filepath.Join(r.cfg.ProcessedDir, r.cfg.ProcessedFile),
		ResampledPath: filepath.Join(r.cfg.ProcessedDir, r.cfg.ResampledFile),
	}

	r.logger.InfoContext(ctx, "starting preprocessing run",
		slog.String("raw_file", r.cfg.RawFile),
		slog.String("processed_dir", r.cfg.ProcessedDir),
		slog.String("resample_freq", r.cfg.ResampleFreq))

	// Load
	var table *dataset.Table
	err := r.stage(ctx, dataprocessing.StageLoad, func(ctx context.Context) error {
		var err error
		table, err = dataprocessing.ParseFile(r.cfg.RawFile, r.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.RowsLoaded = table.Len()
	r.logger.InfoContext(ctx, "input range",
		slog.Time("start", table.Start()),
		slog.Time("end", table.End()))
	if r.logger.Enabled(ctx, slog.LevelDebug) {
		for _, s := range table.Describe() {
			r.logger.DebugContext(ctx, "channel summary",
				slog.String("channel", s.Name),
				slog.Int("count", s.Count),
				slog.Int("missing", s.Missing),
				slog.Float64("mean", s.Mean),
				slog.Float64("std", s.Std),
				slog.Float64("min", s.Min),
				slog.Float64("max", s.Max))
		}
	}

	// Clean
	cleaner := dataprocessing.NewCleaner(dataprocessing.CleanerConfig{
		InterpolateLimit: r.cfg.InterpolateLimit,
		ForwardFillLimit: r.cfg.ForwardFillLimit,
		ClipSigma:        r.cfg.ClipSigma,
	}, r.logger)
	err = r.stage(ctx, dataprocessing.StageClean, func(ctx context.Context) error {
		var err error
		table, _, err = cleaner.Clean(ctx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.RowsCleaned = table.Len()

	// Resample the cleaned channel data; independent of feature derivation.
	var resampled *dataset.Table
	err = r.stage(ctx, dataprocessing.StageResample, func(ctx context.Context) error {
		var err error
		resampled, err = dataprocessing.Resample(ctx, table, r.cfg.ResampleFreq, r.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.ResampledRows = resampled.Len()

	// Derive features on the full-resolution table.
	deriver := dataprocessing.NewFeatureDeriver(dataprocessing.DeriverConfig{
		WindowSize: r.cfg.WindowSize,
		LagShort:   r.cfg.LagShort,
		LagLong:    r.cfg.LagLong,
	}, r.logger)
	var features *dataprocessing.FeatureTable
	err = r.stage(ctx, dataprocessing.StageDerive, func(ctx context.Context) error {
		var err error
		features, err = deriver.Derive(ctx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.FeatureRows = features.Len()

	// Write both artifacts.
	writer := exporter.NewCSVWriter(r.logger)
	err = r.stage(ctx, exporter.StageWrite, func(ctx context.Context) error {
		if err := writer.WriteFeatureTable(result.ProcessedPath, features); err != nil {
			return err
		}
		return writer.WriteChannelTable(result.ResampledPath, resampled)
	})
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	r.logger.InfoContext(ctx, "preprocessing complete",
		slog.Int("rows_loaded", result.RowsLoaded),
		slog.Int("rows_cleaned", result.RowsCleaned),
		slog.Int("feature_rows", result.FeatureRows),
		slog.Int("resampled_rows", result.ResampledRows),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// stage runs one pipeline stage inside a span with per-stage timing logs.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	var span trace.Span
	if r.tracing != nil {
		ctx, span = r.tracing.StartStage(ctx, name)
		span.SetAttributes(attribute.String("pipeline.run_id", infrastructure.GetRunID(ctx)))
		defer span.End()
	}

	started := time.Now()
	err := fn(ctx)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		r.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)))
		return err
	}

	r.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", name),
		slog.Duration("elapsed", time.Since(started)))
	return nil
}
