package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"powercli/internal/dataset"
)

// StageDerive names the feature derivation stage in logs and errors.
const StageDerive = "derive"

// DeriverConfig holds the history-dependent feature sizes, in samples.
type DeriverConfig struct {
	// WindowSize is the trailing rolling window, current record included.
	WindowSize int
	// LagShort and LagLong are the lag offsets for active power.
	LagShort int
	LagLong  int
}

// FeatureRow is one output record of the feature deriver: the cleaned
// channel values plus the derived feature set.
type FeatureRow struct {
	Record dataset.Record

	// Calendar fields, pure functions of the timestamp. DayOfWeek uses the
	// Monday=0..Sunday=6 convention.
	Hour       int
	DayOfWeek  int
	Month      int
	Year       int
	Quarter    int
	DayOfYear  int
	WeekOfYear int

	// Cyclical encodings, always emitted as sin/cos pairs.
	HourSin      float64
	HourCos      float64
	DayOfWeekSin float64
	DayOfWeekCos float64
	MonthSin     float64
	MonthCos     float64

	// IsWeekend is 1 when DayOfWeek is Saturday or Sunday, else 0.
	IsWeekend int

	// Trailing statistics and lags of active power.
	RollingMean float64
	RollingStd  float64
	LagShort    float64
	LagLong     float64
}

// FeatureHeader lists the derived feature column names in output order,
// matching the processed artifact schema.
var FeatureHeader = []string{
	"hour", "dayofweek", "month", "year", "quarter", "dayofyear", "weekofyear",
	"hour_sin", "hour_cos", "dayofweek_sin", "dayofweek_cos", "month_sin", "month_cos",
	"is_weekend", "rolling_mean_7d", "rolling_std_7d", "lag_24h", "lag_7d",
}

// FeatureTable is the ordered output of the feature deriver.
type FeatureTable struct {
	Rows []FeatureRow
}

// Len returns the number of feature rows.
func (ft *FeatureTable) Len() int {
	return len(ft.Rows)
}

// FeatureDeriver computes the derived feature set over a cleaned table.
//
// Precondition: the table has no gaps, so sample-count windows align with
// wall-clock offsets.
type FeatureDeriver struct {
	cfg    DeriverConfig
	logger *slog.Logger
}

// NewFeatureDeriver creates a deriver with the given window and lag sizes.
func NewFeatureDeriver(cfg DeriverConfig, logger *slog.Logger) *FeatureDeriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureDeriver{cfg: cfg, logger: logger}
}

// Derive computes calendar fields, cyclical encodings, the weekend flag,
// trailing rolling statistics and lagged active power for every record
// with full trailing history. The first max(WindowSize-1, LagLong,
// LagShort) records lack history and are dropped, never imputed.
func (d *FeatureDeriver) Derive(ctx context.Context, t *dataset.Table) (*FeatureTable, error) {
	n := t.Len()
	active := t.Channel(dataset.GlobalActivePower)

	start := d.cfg.WindowSize - 1
	if d.cfg.LagLong > start {
		start = d.cfg.LagLong
	}
	if d.cfg.LagShort > start {
		start = d.cfg.LagShort
	}

	rows := make([]FeatureRow, 0, max(0, n-start))
	for i := start; i < n; i++ {
		rec := *t.At(i)
		row := calendarFeatures(rec)

		window := active[i-d.cfg.WindowSize+1 : i+1]
		row.RollingMean, row.RollingStd = stat.MeanStdDev(window, nil)
		row.LagShort = active[i-d.cfg.LagShort]
		row.LagLong = active[i-d.cfg.LagLong]

		rows = append(rows, row)
	}

	d.logger.InfoContext(ctx, "features created",
		slog.Int("rows_in", n),
		slog.Int("rows_out", len(rows)),
		slog.Int("rows_dropped", n-len(rows)))

	return &FeatureTable{Rows: rows}, nil
}

// calendarFeatures fills the timestamp-derived fields of a feature row.
func calendarFeatures(rec dataset.Record) FeatureRow {
	ts := rec.Timestamp
	hour := ts.Hour()
	dow := mondayIndexed(ts.Weekday())
	month := int(ts.Month())
	_, week := ts.ISOWeek()

	row := FeatureRow{
		Record:     rec,
		Hour:       hour,
		DayOfWeek:  dow,
		Month:      month,
		Year:       ts.Year(),
		Quarter:    (month-1)/3 + 1,
		DayOfYear:  ts.YearDay(),
		WeekOfYear: week,
	}
	row.HourSin, row.HourCos = cyclical(hour, 24)
	row.DayOfWeekSin, row.DayOfWeekCos = cyclical(dow, 7)
	row.MonthSin, row.MonthCos = cyclical(month, 12)
	if dow >= 5 {
		row.IsWeekend = 1
	}
	return row
}

// mondayIndexed converts Go's Sunday=0 weekday to Monday=0..Sunday=6.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// cyclical encodes an integer field of period p as a point on the unit
// circle. Emitting the pair keeps angular position lossless across the
// wraparound.
func cyclical(v, p int) (sin, cos float64) {
	angle := 2 * math.Pi * float64(v) / float64(p)
	return math.Sin(angle), math.Cos(angle)
}
