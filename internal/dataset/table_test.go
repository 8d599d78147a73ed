package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(h int) time.Time {
	return time.Date(2007, 1, 1, h, 0, 0, 0, time.UTC)
}

func record(h int, active float64) Record {
	r := Record{Timestamp: ts(h)}
	for c := 0; c < ChannelCount; c++ {
		r.Values[c] = 1.0
	}
	r.Values[GlobalActivePower] = active
	return r
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		wantErr bool
	}{
		{
			name:    "empty",
			records: nil,
			wantErr: false,
		},
		{
			name:    "strictly increasing",
			records: []Record{record(0, 1), record(1, 2), record(2, 3)},
			wantErr: false,
		},
		{
			name:    "duplicate timestamp",
			records: []Record{record(0, 1), record(0, 2)},
			wantErr: true,
		},
		{
			name:    "decreasing timestamp",
			records: []Record{record(2, 1), record(1, 2)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.records)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.records), table.Len())
		})
	}
}

func TestTableIndex(t *testing.T) {
	table, err := NewTable([]Record{record(0, 1), record(1, 2), record(5, 3)})
	require.NoError(t, err)

	i, ok := table.Index(ts(5))
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, 3.0, table.At(i).Values[GlobalActivePower])

	_, ok = table.Index(ts(3))
	assert.False(t, ok)
}

func TestTableChannelRoundTrip(t *testing.T) {
	table, err := NewTable([]Record{record(0, 1), record(1, 2)})
	require.NoError(t, err)

	col := table.Channel(GlobalActivePower)
	assert.Equal(t, []float64{1, 2}, col)

	col[0] = 10
	table.SetChannel(GlobalActivePower, col)
	assert.Equal(t, 10.0, table.At(0).Values[GlobalActivePower])
}

func TestTableFilter(t *testing.T) {
	table, err := NewTable([]Record{record(0, 1), record(1, 2), record(2, 3)})
	require.NoError(t, err)

	kept := table.Filter(func(_ int, r Record) bool {
		return r.Values[GlobalActivePower] != 2
	})
	assert.Equal(t, 3, table.Len(), "filter must not mutate the source")
	require.Equal(t, 2, kept.Len())

	i, ok := kept.Index(ts(2))
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestMissingMarker(t *testing.T) {
	assert.True(t, IsMissing(Missing()))
	assert.False(t, IsMissing(0))
	assert.False(t, IsMissing(-999))

	r := record(0, Missing())
	assert.True(t, r.HasMissing())

	table, err := NewTable([]Record{r, record(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 1, table.MissingCount())
}

func TestDescribe(t *testing.T) {
	table, err := NewTable([]Record{record(0, 1), record(1, Missing()), record(2, 3)})
	require.NoError(t, err)

	summary := table.Describe()
	active := summary[GlobalActivePower]
	assert.Equal(t, "Global_active_power", active.Name)
	assert.Equal(t, 2, active.Count)
	assert.Equal(t, 1, active.Missing)
	assert.InDelta(t, 2.0, active.Mean, 1e-12)
	assert.InDelta(t, 1.0, active.Min, 1e-12)
	assert.InDelta(t, 3.0, active.Max, 1e-12)

	voltage := summary[Voltage]
	assert.Equal(t, 3, voltage.Count)
	assert.Equal(t, 0, voltage.Missing)
	assert.InDelta(t, 1.0, voltage.Mean, 1e-12)
}
