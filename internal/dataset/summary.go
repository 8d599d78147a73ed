package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelSummary holds descriptive statistics for one channel, computed
// over present (non-missing) values only.
type ChannelSummary struct {
	Name    string
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
}

// Describe computes per-channel summary statistics. Channels with no
// present values report zero statistics and a full missing count.
func (t *Table) Describe() [ChannelCount]ChannelSummary {
	var out [ChannelCount]ChannelSummary
	for c := 0; c < ChannelCount; c++ {
		col := t.Channel(c)
		present := col[:0]
		missing := 0
		for _, v := range col {
			if IsMissing(v) {
				missing++
				continue
			}
			present = append(present, v)
		}

		s := ChannelSummary{Name: ChannelNames[c], Count: len(present), Missing: missing}
		if len(present) > 0 {
			s.Mean, s.Std = stat.MeanStdDev(present, nil)
			s.Min = floats.Min(present)
			s.Max = floats.Max(present)
		}
		out[c] = s
	}
	return out
}
