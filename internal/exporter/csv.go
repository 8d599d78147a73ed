package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"powercli/internal/dataprocessing"
	"powercli/internal/dataset"
	apperrors "powercli/internal/errors"
)

// StageWrite names the writing stage in logs and errors.
const StageWrite = "write"

// CSVWriter persists pipeline output tables as delimited artifacts with
// the timestamp as the leading column. Output is deterministic: identical
// input produces byte-for-byte identical files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteChannelTable writes a seven-channel table, e.g. the resampled
// aggregate.
func (w *CSVWriter) WriteChannelTable(path string, t *dataset.Table) error {
	header := append([]string{"timestamp"}, dataset.ChannelNames[:]...)

	sw, err := w.createStream(path, header)
	if err != nil {
		return err
	}

	record := make([]string, 1+dataset.ChannelCount)
	for _, r := range t.Records() {
		record[0] = r.Timestamp.Format(dataset.TimestampLayout)
		for c, v := range r.Values {
			record[c+1] = formatValue(v)
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return apperrors.NewIO(StageWrite, fmt.Sprintf("write record to %s", path), err)
		}
	}
	if err := sw.Close(); err != nil {
		return apperrors.NewIO(StageWrite, fmt.Sprintf("close %s", path), err)
	}

	w.logger.Info("table written",
		slog.String("path", path),
		slog.Int("rows", t.Len()))
	return nil
}

// WriteFeatureTable writes the full-resolution table with the derived
// feature set appended after the channel columns.
func (w *CSVWriter) WriteFeatureTable(path string, ft *dataprocessing.FeatureTable) error {
	header := append([]string{"timestamp"}, dataset.ChannelNames[:]...)
	header = append(header, dataprocessing.FeatureHeader...)

	sw, err := w.createStream(path, header)
	if err != nil {
		return err
	}

	for i := range ft.Rows {
		if err := sw.WriteRecord(featureRecord(&ft.Rows[i])); err != nil {
			sw.Close()
			return apperrors.NewIO(StageWrite, fmt.Sprintf("write record to %s", path), err)
		}
	}
	if err := sw.Close(); err != nil {
		return apperrors.NewIO(StageWrite, fmt.Sprintf("close %s", path), err)
	}

	w.logger.Info("feature table written",
		slog.String("path", path),
		slog.Int("rows", ft.Len()))
	return nil
}

// featureRecord formats one feature row in output column order.
func featureRecord(row *dataprocessing.FeatureRow) []string {
	rec := make([]string, 0, 1+dataset.ChannelCount+len(dataprocessing.FeatureHeader))
	rec = append(rec, row.Record.Timestamp.Format(dataset.TimestampLayout))
	for _, v := range row.Record.Values {
		rec = append(rec, formatValue(v))
	}
	rec = append(rec,
		strconv.Itoa(row.Hour),
		strconv.Itoa(row.DayOfWeek),
		strconv.Itoa(row.Month),
		strconv.Itoa(row.Year),
		strconv.Itoa(row.Quarter),
		strconv.Itoa(row.DayOfYear),
		strconv.Itoa(row.WeekOfYear),
		formatValue(row.HourSin),
		formatValue(row.HourCos),
		formatValue(row.DayOfWeekSin),
		formatValue(row.DayOfWeekCos),
		formatValue(row.MonthSin),
		formatValue(row.MonthCos),
		strconv.Itoa(row.IsWeekend),
		formatValue(row.RollingMean),
		formatValue(row.RollingStd),
		formatValue(row.LagShort),
		formatValue(row.LagLong),
	)
	return rec
}

// formatValue renders a float deterministically; the missing marker
// renders as an empty field.
func formatValue(v float64) string {
	if dataset.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// createStream opens the output file and writes the header.
func (w *CSVWriter) createStream(path string, header []string) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewIO(StageWrite, fmt.Sprintf("create directory for %s", path), err)
	}
	sw, err := CreateStreamWriter(path, header)
	if err != nil {
		return nil, apperrors.NewIO(StageWrite, fmt.Sprintf("create %s", path), err)
	}
	return sw, nil
}

// StreamWriter provides streaming CSV writing for large tables.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer and writes the
// header row.
func CreateStreamWriter(path string, header []string) (*StreamWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
