// Package dataprocessing implements the preprocessing stages for the
// household electric power consumption time series.
//
// # Architecture
//
// The package is organized into four components, applied in order:
//
// 1. Loader: parses the raw semicolon-delimited file into a dataset.Table
// 2. Cleaner: fills/interpolates missing values and caps outliers
// 3. FeatureDeriver: computes calendar, cyclical, rolling and lag features
// 4. Resampler: aggregates the cleaned channels to a coarser frequency
//
// # Data Flow
//
// The full-resolution path and the resampled path fork after cleaning:
//
//	Raw file → Loader → Table → Cleaner → Table ─┬→ FeatureDeriver → FeatureTable
//	                                             └→ Resampler → Table
//
// Both paths terminate at the exporter.
//
// # Preconditions
//
// The raw file is chronological; the loader rejects out-of-order
// timestamps rather than sorting. After cleaning the table has no gaps, so
// rolling and lag windows counted in samples align with wall-clock
// offsets; this is a documented precondition of the feature deriver, not a
// runtime check.
//
// # Error Handling
//
// Stages fail fast with structured errors from internal/errors that name
// the stage and, for parse failures, the input line and column.
package dataprocessing
