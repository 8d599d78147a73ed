package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powercli/internal/dataprocessing"
	"powercli/internal/dataset"
	apperrors "powercli/internal/errors"
)

func channelTable(t *testing.T) *dataset.Table {
	t.Helper()
	start := time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]dataset.Record, 3)
	for i := range records {
		records[i] = dataset.Record{Timestamp: start.Add(time.Duration(i) * time.Hour)}
		for c := 0; c < dataset.ChannelCount; c++ {
			records[i].Values[c] = float64(i*10 + c)
		}
	}
	records[1].Values[dataset.Voltage] = dataset.Missing()
	table, err := dataset.NewTable(records)
	require.NoError(t, err)
	return table
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteChannelTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hourly.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteChannelTable(path, channelTable(t)))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)

	want := append([]string{"timestamp"}, dataset.ChannelNames[:]...)
	assert.Equal(t, want, rows[0])

	assert.Equal(t, "2007-01-01 00:00:00", rows[1][0])
	assert.Equal(t, "2007-01-01 02:00:00", rows[3][0])
	assert.Equal(t, "0", rows[1][1])
	assert.Equal(t, "13", rows[2][4])

	// Missing values render as empty fields, never as NaN text.
	assert.Equal(t, "", rows[2][1+dataset.Voltage])
}

func TestWriteChannelTableDeterministic(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)
	table := channelTable(t)

	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	require.NoError(t, w.WriteChannelTable(first, table))
	require.NoError(t, w.WriteChannelTable(second, table))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteChannelTableCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "nested", "hourly.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteChannelTable(path, channelTable(t)))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestWriteChannelTableBadPath(t *testing.T) {
	dir := t.TempDir()
	// A file where a directory component is expected.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewCSVWriter(nil).WriteChannelTable(filepath.Join(blocker, "out.csv"), channelTable(t))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIO))
	assert.Equal(t, StageWrite, apperrors.StageOf(err))
}

func TestWriteFeatureTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.csv")
	w := NewCSVWriter(nil)

	ts := time.Date(2007, 1, 6, 14, 0, 0, 0, time.UTC)
	row := dataprocessing.FeatureRow{
		Record:      dataset.Record{Timestamp: ts},
		Hour:        14,
		DayOfWeek:   5,
		Month:       1,
		Year:        2007,
		Quarter:     1,
		DayOfYear:   6,
		WeekOfYear:  1,
		HourSin:     -0.5,
		HourCos:     -0.8660254037844388,
		IsWeekend:   1,
		RollingMean: 1.25,
		RollingStd:  0.5,
		LagShort:    2,
		LagLong:     3,
	}
	for c := 0; c < dataset.ChannelCount; c++ {
		row.Record.Values[c] = float64(c)
	}
	ft := &dataprocessing.FeatureTable{Rows: []dataprocessing.FeatureRow{row}}

	require.NoError(t, w.WriteFeatureTable(path, ft))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 1+dataset.ChannelCount+len(dataprocessing.FeatureHeader))

	assert.Equal(t, "timestamp", rows[0][0])
	assert.Equal(t, "Global_active_power", rows[0][1])
	assert.Equal(t, "hour", rows[0][1+dataset.ChannelCount])
	assert.Equal(t, "lag_7d", rows[0][len(rows[0])-1])

	got := rows[1]
	assert.Equal(t, "2007-01-06 14:00:00", got[0])
	off := 1 + dataset.ChannelCount
	assert.Equal(t, "14", got[off])
	assert.Equal(t, "5", got[off+1])
	assert.Equal(t, "2007", got[off+3])
	assert.Equal(t, "-0.5", got[off+7])
	assert.Equal(t, "1", got[off+13])
	assert.Equal(t, "1.25", got[off+14])
	assert.Equal(t, "3", got[len(got)-1])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", formatValue(0))
	assert.Equal(t, "1.5", formatValue(1.5))
	assert.Equal(t, "-2.348", formatValue(-2.348))
	assert.Equal(t, "", formatValue(dataset.Missing()))

	// 'g' with full precision round-trips without trailing zero noise.
	assert.False(t, strings.Contains(formatValue(0.1), "00000"))
}
