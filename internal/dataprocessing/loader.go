package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"powercli/internal/dataset"
	apperrors "powercli/internal/errors"
)

const (
	// StageLoad names the loading stage in logs and errors.
	StageLoad = "load"

	// missingToken is the literal used for absent readings in the raw file.
	missingToken = "?"

	// rawTimestampLayout parses the day-first Date and Time columns joined
	// with a space, e.g. "16/12/2006 17:24:00".
	rawTimestampLayout = "2/1/2006 15:04:05"
)

// expectedHeader is the fixed 9-column schema of the raw file.
var expectedHeader = []string{
	"Date", "Time",
	"Global_active_power", "Global_reactive_power", "Voltage",
	"Global_intensity", "Sub_metering_1", "Sub_metering_2", "Sub_metering_3",
}

// ParseFile reads a raw semicolon-delimited power consumption file and
// builds a timestamp-indexed table of the seven channels.
//
// The file is assumed chronological; strictly decreasing or duplicate
// timestamps are rejected as malformed input rather than sorted, because
// every downstream window operation depends on the original order.
func ParseFile(path string, logger *slog.Logger) (*dataset.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIO(StageLoad, fmt.Sprintf("open %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(expectedHeader)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewMalformedInput(StageLoad, "empty input file")
	}
	if err != nil {
		return nil, apperrors.NewMalformedInput(StageLoad, fmt.Sprintf("failed to read header: %v", err))
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var (
		records []dataset.Record
		prev    time.Time
		line    = 1 // header consumed
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Wrong field counts surface here as csv parse errors.
			return nil, apperrors.NewMalformedInput(StageLoad,
				fmt.Sprintf("bad record at line %d: %v", line, err))
		}

		rec, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}

		if !prev.IsZero() && !rec.Timestamp.After(prev) {
			return nil, apperrors.NewMalformedInput(StageLoad,
				fmt.Sprintf("timestamps not strictly increasing at line %d: %s after %s",
					line, rec.Timestamp.Format(dataset.TimestampLayout), prev.Format(dataset.TimestampLayout)))
		}
		prev = rec.Timestamp
		records = append(records, rec)
	}

	table, err := dataset.NewTable(records)
	if err != nil {
		return nil, apperrors.NewMalformedInput(StageLoad, err.Error())
	}

	logger.Info("data loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("missing_values", table.MissingCount()))

	return table, nil
}

// checkHeader verifies the exact 9-column schema.
func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return apperrors.NewMalformedInput(StageLoad,
			fmt.Sprintf("expected %d columns, got %d", len(expectedHeader), len(header)))
	}
	for i, name := range expectedHeader {
		if strings.TrimSpace(header[i]) != name {
			return apperrors.NewMalformedInput(StageLoad,
				fmt.Sprintf("header column %d is %q, want %q", i+1, strings.TrimSpace(header[i]), name))
		}
	}
	return nil
}

// parseRow converts one raw row into a Record. The missing token maps to
// the dataset missing marker; any other unparseable field is a ParseError.
func parseRow(row []string, line int) (dataset.Record, error) {
	ts, err := time.Parse(rawTimestampLayout, strings.TrimSpace(row[0])+" "+strings.TrimSpace(row[1]))
	if err != nil {
		return dataset.Record{}, apperrors.NewParse(StageLoad, line, "Date",
			fmt.Sprintf("unparseable date/time %q %q", row[0], row[1]), err)
	}

	rec := dataset.Record{Timestamp: ts.UTC()}
	for c := 0; c < dataset.ChannelCount; c++ {
		field := strings.TrimSpace(row[c+2])
		if field == missingToken || field == "" {
			rec.Values[c] = dataset.Missing()
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return dataset.Record{}, apperrors.NewParse(StageLoad, line, dataset.ChannelNames[c],
				fmt.Sprintf("non-numeric value %q", field), err)
		}
		rec.Values[c] = v
	}
	return rec, nil
}
