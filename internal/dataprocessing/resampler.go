package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"powercli/internal/dataset"
	apperrors "powercli/internal/errors"
)

// StageResample names the resampling stage in logs and errors.
const StageResample = "resample"

// ParseFrequency converts a frequency specifier into a fixed bucket width.
// Recognized units, case-insensitive and with an optional integer
// multiple: "min"/"T" (minutes), "H"/"hourly" (hours), "D"/"daily"
// (days). Calendar units without a fixed width (weeks, months) are
// rejected.
func ParseFrequency(spec string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return 0, apperrors.NewInvalidFrequency(StageResample, spec)
	}

	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	n := 1
	if digits > 0 {
		var err error
		n, err = strconv.Atoi(s[:digits])
		if err != nil || n < 1 {
			return 0, apperrors.NewInvalidFrequency(StageResample, spec)
		}
	}

	var unit time.Duration
	switch s[digits:] {
	case "t", "min":
		unit = time.Minute
	case "h", "hourly":
		unit = time.Hour
	case "d", "daily":
		unit = 24 * time.Hour
	default:
		return 0, apperrors.NewInvalidFrequency(StageResample, spec)
	}
	return time.Duration(n) * unit, nil
}

// Resample aggregates the seven channels into fixed-width,
// timestamp-aligned buckets at the requested frequency. Each output value
// is the arithmetic mean of the channel values falling in the bucket; a
// bucket with no contributing records produces no output row.
func Resample(ctx context.Context, t *dataset.Table, freq string, logger *slog.Logger) (*dataset.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	width, err := ParseFrequency(freq)
	if err != nil {
		return nil, err
	}

	var (
		records []dataset.Record
		bucket  time.Time
		sums    [dataset.ChannelCount]float64
		counts  [dataset.ChannelCount]int
		open    bool
	)
	flush := func() {
		if !open {
			return
		}
		rec := dataset.Record{Timestamp: bucket}
		for c := 0; c < dataset.ChannelCount; c++ {
			if counts[c] == 0 {
				rec.Values[c] = dataset.Missing()
				continue
			}
			rec.Values[c] = sums[c] / float64(counts[c])
		}
		records = append(records, rec)
		sums = [dataset.ChannelCount]float64{}
		counts = [dataset.ChannelCount]int{}
	}

	for _, r := range t.Records() {
		b := r.Timestamp.Truncate(width)
		if !open || !b.Equal(bucket) {
			flush()
			bucket = b
			open = true
		}
		for c, v := range r.Values {
			if dataset.IsMissing(v) {
				continue
			}
			sums[c] += v
			counts[c]++
		}
	}
	flush()

	out, err := dataset.NewTable(records)
	if err != nil {
		// Input order is a loader-enforced invariant, so buckets are
		// strictly increasing by construction.
		return nil, fmt.Errorf("resample: %w", err)
	}

	logger.InfoContext(ctx, "data resampled",
		slog.String("freq", freq),
		slog.Int("rows_in", t.Len()),
		slog.Int("rows_out", out.Len()))

	return out, nil
}
