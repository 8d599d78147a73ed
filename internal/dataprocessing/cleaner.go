package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"

	"powercli/internal/dataset"
)

// StageClean names the cleaning stage in logs and errors.
const StageClean = "clean"

// CleanerConfig holds the cleaning limits, all counted in samples at the
// table's native rate.
type CleanerConfig struct {
	// InterpolateLimit is the longest gap filled by time-weighted
	// interpolation. Longer gaps are left untouched at that step.
	InterpolateLimit int
	// ForwardFillLimit is the longest still-missing run filled by
	// forward-fill. Longer runs are left missing and dropped.
	ForwardFillLimit int
	// ClipSigma is the outlier cap in standard deviations.
	ClipSigma float64
}

// ClipBounds records the clip interval applied to one channel.
type ClipBounds struct {
	Lower float64
	Upper float64
}

// CleanStats summarizes one cleaning run, for observability only.
type CleanStats struct {
	MissingBefore int
	Interpolated  int
	ForwardFilled int
	RowsDropped   int
	MissingAfter  int
	Clipped       int
	Bounds        [dataset.ChannelCount]ClipBounds
}

// Cleaner fills missing values and caps outliers, per channel.
type Cleaner struct {
	cfg    CleanerConfig
	logger *slog.Logger
}

// NewCleaner creates a cleaner with the given limits.
func NewCleaner(cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{cfg: cfg, logger: logger}
}

// Clean applies, per channel and in order: time-weighted interpolation of
// short gaps, bounded forward-fill, dropping of unrepaired records, and a
// symmetric mean±kσ clip. The input table is mutated in place for the fill
// steps; the returned table is the filtered result.
func (c *Cleaner) Clean(ctx context.Context, t *dataset.Table) (*dataset.Table, CleanStats, error) {
	stats := CleanStats{MissingBefore: t.MissingCount()}
	c.logger.InfoContext(ctx, "starting data cleaning",
		slog.Int("rows", t.Len()),
		slog.Int("missing_before", stats.MissingBefore))

	times := t.Timestamps()

	for ch := 0; ch < dataset.ChannelCount; ch++ {
		col := t.Channel(ch)
		interpolated := interpolateGaps(times, col, c.cfg.InterpolateLimit)
		filled := forwardFillRuns(col, c.cfg.ForwardFillLimit)
		t.SetChannel(ch, col)

		stats.Interpolated += interpolated
		stats.ForwardFilled += filled
		if interpolated > 0 || filled > 0 {
			c.logger.DebugContext(ctx, "channel gaps repaired",
				slog.String("channel", dataset.ChannelNames[ch]),
				slog.Int("interpolated", interpolated),
				slog.Int("forward_filled", filled))
		}
	}

	before := t.Len()
	cleaned := t.Filter(func(_ int, r dataset.Record) bool {
		return !r.HasMissing()
	})
	stats.RowsDropped = before - cleaned.Len()
	stats.MissingAfter = cleaned.MissingCount()

	for ch := 0; ch < dataset.ChannelCount; ch++ {
		bounds, clipped := clipChannel(cleaned, ch, c.cfg.ClipSigma)
		stats.Bounds[ch] = bounds
		stats.Clipped += clipped
		if clipped > 0 {
			c.logger.DebugContext(ctx, "channel outliers clipped",
				slog.String("channel", dataset.ChannelNames[ch]),
				slog.Int("clipped", clipped),
				slog.Float64("lower", bounds.Lower),
				slog.Float64("upper", bounds.Upper))
		}
	}

	c.logger.InfoContext(ctx, "data cleaned",
		slog.Int("rows", cleaned.Len()),
		slog.Int("rows_dropped", stats.RowsDropped),
		slog.Int("interpolated", stats.Interpolated),
		slog.Int("forward_filled", stats.ForwardFilled),
		slog.Int("clipped", stats.Clipped),
		slog.Int("missing_after", stats.MissingAfter))

	return cleaned, stats, nil
}

// interpolateGaps fills every gap of at most limit consecutive missing
// samples by interpolating between the surrounding present values,
// weighted by wall-clock distance. A gap is filled in full or not at all;
// gaps touching either end of the series have no second endpoint and stay
// missing.
func interpolateGaps(times []time.Time, vals []float64, limit int) int {
	filled := 0
	n := len(vals)
	for i := 0; i < n; {
		if !dataset.IsMissing(vals[i]) {
			i++
			continue
		}
		start := i
		for i < n && dataset.IsMissing(vals[i]) {
			i++
		}
		end := i // first present index after the gap
		if start == 0 || end == n {
			continue
		}
		if end-start > limit {
			continue
		}
		t0, v0 := times[start-1], vals[start-1]
		t1, v1 := times[end], vals[end]
		span := t1.Sub(t0).Seconds()
		for j := start; j < end; j++ {
			w := times[j].Sub(t0).Seconds() / span
			vals[j] = v0 + (v1-v0)*w
			filled++
		}
	}
	return filled
}

// forwardFillRuns fills every still-missing run of at most limit samples
// with the last present value before the run. Runs are filled in full or
// not at all; a leading run has no prior value and stays missing.
func forwardFillRuns(vals []float64, limit int) int {
	filled := 0
	n := len(vals)
	for i := 0; i < n; {
		if !dataset.IsMissing(vals[i]) {
			i++
			continue
		}
		start := i
		for i < n && dataset.IsMissing(vals[i]) {
			i++
		}
		end := i
		if start == 0 {
			continue
		}
		if end-start > limit {
			continue
		}
		last := vals[start-1]
		for j := start; j < end; j++ {
			vals[j] = last
			filled++
		}
	}
	return filled
}

// clipChannel caps every value of the channel to mean±kσ computed over the
// whole table. A zero-variance channel degenerates the bounds to a single
// point, which would collapse all values to the mean, so it is treated as
// a no-op clip.
func clipChannel(t *dataset.Table, ch int, sigma float64) (ClipBounds, int) {
	col := t.Channel(ch)
	if len(col) == 0 {
		return ClipBounds{}, 0
	}
	mean, std := stat.MeanStdDev(col, nil)
	if !(std > 0) {
		return ClipBounds{Lower: mean, Upper: mean}, 0
	}

	bounds := ClipBounds{Lower: mean - sigma*std, Upper: mean + sigma*std}
	clipped := 0
	for i, v := range col {
		switch {
		case v < bounds.Lower:
			col[i] = bounds.Lower
			clipped++
		case v > bounds.Upper:
			col[i] = bounds.Upper
			clipped++
		}
	}
	if clipped > 0 {
		t.SetChannel(ch, col)
	}
	return bounds, clipped
}
