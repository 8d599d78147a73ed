// Package exporter writes the pipeline's two output artifacts: the
// full-resolution feature table and the resampled aggregate, both as
// delimited text with the timestamp as the leading column.
package exporter
