package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powercli/internal/dataset"
	apperrors "powercli/internal/errors"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want time.Duration
		ok   bool
	}{
		{name: "hour shorthand", spec: "H", want: time.Hour, ok: true},
		{name: "hour lowercase", spec: "h", want: time.Hour, ok: true},
		{name: "hourly word", spec: "hourly", want: time.Hour, ok: true},
		{name: "hour multiple", spec: "2H", want: 2 * time.Hour, ok: true},
		{name: "minute shorthand", spec: "T", want: time.Minute, ok: true},
		{name: "minute multiple", spec: "15min", want: 15 * time.Minute, ok: true},
		{name: "day shorthand", spec: "D", want: 24 * time.Hour, ok: true},
		{name: "daily word", spec: "daily", want: 24 * time.Hour, ok: true},
		{name: "padded", spec: " 30min ", want: 30 * time.Minute, ok: true},
		{name: "empty", spec: ""},
		{name: "zero multiple", spec: "0H"},
		{name: "bare number", spec: "15"},
		{name: "weekly has no fixed width", spec: "W"},
		{name: "monthly has no fixed width", spec: "M"},
		{name: "garbage", spec: "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrequency(tt.spec)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidFrequency))
				assert.Equal(t, StageResample, apperrors.StageOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResampleHourlyMeans(t *testing.T) {
	// Two full hours of minute data, values 1..120: hour one averages to
	// 30.5 and hour two to 90.5.
	records := make([]dataset.Record, 120)
	for i := range records {
		rec := dataset.Record{Timestamp: testStart.Add(time.Duration(i) * time.Minute)}
		for c := 0; c < dataset.ChannelCount; c++ {
			rec.Values[c] = float64(i + 1)
		}
		records[i] = rec
	}
	table, err := dataset.NewTable(records)
	require.NoError(t, err)

	out, err := Resample(context.Background(), table, "H", nil)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	assert.Equal(t, testStart, out.At(0).Timestamp)
	assert.Equal(t, testStart.Add(time.Hour), out.At(1).Timestamp)
	for c := 0; c < dataset.ChannelCount; c++ {
		assert.InDelta(t, 30.5, out.At(0).Values[c], 1e-12)
		assert.InDelta(t, 90.5, out.At(1).Values[c], 1e-12)
	}
}

func TestResampleSkipsEmptyBuckets(t *testing.T) {
	// Records at 00:05, 00:10 and 02:30: the 01:00 bucket has no records
	// and produces no row, rather than a zero or missing row.
	stamps := []time.Time{
		testStart.Add(5 * time.Minute),
		testStart.Add(10 * time.Minute),
		testStart.Add(2*time.Hour + 30*time.Minute),
	}
	records := make([]dataset.Record, len(stamps))
	for i, ts := range stamps {
		records[i] = dataset.Record{Timestamp: ts}
		for c := 0; c < dataset.ChannelCount; c++ {
			records[i].Values[c] = float64(i + 1)
		}
	}
	table, err := dataset.NewTable(records)
	require.NoError(t, err)

	out, err := Resample(context.Background(), table, "H", nil)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, testStart, out.At(0).Timestamp)
	assert.Equal(t, testStart.Add(2*time.Hour), out.At(1).Timestamp)
	assert.InDelta(t, 1.5, out.At(0).Values[dataset.GlobalActivePower], 1e-12)
	assert.InDelta(t, 3.0, out.At(1).Values[dataset.GlobalActivePower], 1e-12)
}

func TestResampleIgnoresMissingValues(t *testing.T) {
	// Missing samples neither contribute to the mean nor zero it out; a
	// channel missing across the whole bucket stays missing in the output.
	records := make([]dataset.Record, 3)
	for i := range records {
		records[i] = dataset.Record{Timestamp: testStart.Add(time.Duration(i) * time.Minute)}
		for c := 0; c < dataset.ChannelCount; c++ {
			records[i].Values[c] = 10
		}
	}
	records[1].Values[dataset.Voltage] = dataset.Missing()
	records[0].Values[dataset.SubMetering3] = dataset.Missing()
	records[1].Values[dataset.SubMetering3] = dataset.Missing()
	records[2].Values[dataset.SubMetering3] = dataset.Missing()
	table, err := dataset.NewTable(records)
	require.NoError(t, err)

	out, err := Resample(context.Background(), table, "H", nil)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.InDelta(t, 10.0, out.At(0).Values[dataset.Voltage], 1e-12)
	assert.True(t, dataset.IsMissing(out.At(0).Values[dataset.SubMetering3]))
}

func TestResampleAlreadyAligned(t *testing.T) {
	// Hourly input resampled at H passes through unchanged.
	active := []float64{1, 2, 3, 4}
	table := hourlyTable(t, active)

	out, err := Resample(context.Background(), table, "H", nil)
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	for i, v := range active {
		assert.Equal(t, testStart.Add(time.Duration(i)*time.Hour), out.At(i).Timestamp)
		assert.Equal(t, v, out.At(i).Values[dataset.GlobalActivePower])
	}
}

func TestResampleInvalidFrequency(t *testing.T) {
	table := hourlyTable(t, []float64{1})
	_, err := Resample(context.Background(), table, "W", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidFrequency))
}

func TestResampleEmptyTable(t *testing.T) {
	table, err := dataset.NewTable(nil)
	require.NoError(t, err)
	out, err := Resample(context.Background(), table, "D", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}
