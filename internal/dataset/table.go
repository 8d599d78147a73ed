package dataset

import (
	"fmt"
	"time"
)

// Table is the primary in-memory structure: an ordered sequence of records
// with strictly increasing, unique timestamps. Chronological order is
// load-bearing for interpolation, rolling windows and lag computation, so
// the constructor rejects any violation instead of sorting.
//
// The table supports both positional access (At) and timestamp lookup
// (Index). It is built once by the loader and mutated in place by the
// cleaning stage; no concurrent mutation is supported.
type Table struct {
	records []Record
	byTime  map[int64]int
}

// NewTable builds a table from records, verifying strict timestamp
// monotonicity and uniqueness.
func NewTable(records []Record) (*Table, error) {
	byTime := make(map[int64]int, len(records))
	for i, r := range records {
		if i > 0 && !r.Timestamp.After(records[i-1].Timestamp) {
			return nil, fmt.Errorf("timestamps not strictly increasing at row %d: %s followed by %s",
				i, records[i-1].Timestamp.Format(TimestampLayout), r.Timestamp.Format(TimestampLayout))
		}
		byTime[r.Timestamp.Unix()] = i
	}
	return &Table{records: records, byTime: byTime}, nil
}

// TimestampLayout is the canonical textual form of a table timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns a pointer to the record at position i for in-place mutation.
func (t *Table) At(i int) *Record {
	return &t.records[i]
}

// Records exposes the underlying ordered slice.
func (t *Table) Records() []Record {
	return t.records
}

// Index returns the position of the record with the given timestamp.
func (t *Table) Index(ts time.Time) (int, bool) {
	i, ok := t.byTime[ts.Unix()]
	return i, ok
}

// Timestamps returns the timestamps of all records in order.
func (t *Table) Timestamps() []time.Time {
	out := make([]time.Time, len(t.records))
	for i, r := range t.records {
		out[i] = r.Timestamp
	}
	return out
}

// Channel returns a copy of one channel as a column vector.
func (t *Table) Channel(c int) []float64 {
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.Values[c]
	}
	return out
}

// SetChannel writes a column vector back into the table.
func (t *Table) SetChannel(c int, vals []float64) {
	if len(vals) != len(t.records) {
		panic(fmt.Sprintf("dataset: column length %d does not match table length %d", len(vals), len(t.records)))
	}
	for i := range t.records {
		t.records[i].Values[c] = vals[i]
	}
}

// Filter returns a new table containing only the records for which keep
// returns true. Order is preserved, so the result is valid by construction.
func (t *Table) Filter(keep func(i int, r Record) bool) *Table {
	kept := make([]Record, 0, len(t.records))
	for i, r := range t.records {
		if keep(i, r) {
			kept = append(kept, r)
		}
	}
	byTime := make(map[int64]int, len(kept))
	for i, r := range kept {
		byTime[r.Timestamp.Unix()] = i
	}
	return &Table{records: kept, byTime: byTime}
}

// MissingCount returns the number of missing values across all channels.
func (t *Table) MissingCount() int {
	n := 0
	for _, r := range t.records {
		for _, v := range r.Values {
			if IsMissing(v) {
				n++
			}
		}
	}
	return n
}

// Start returns the first timestamp. Zero time on an empty table.
func (t *Table) Start() time.Time {
	if len(t.records) == 0 {
		return time.Time{}
	}
	return t.records[0].Timestamp
}

// End returns the last timestamp. Zero time on an empty table.
func (t *Table) End() time.Time {
	if len(t.records) == 0 {
		return time.Time{}
	}
	return t.records[len(t.records)-1].Timestamp
}
