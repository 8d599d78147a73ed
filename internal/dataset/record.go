package dataset

import (
	"math"
	"time"
)

// Channel indices into Record.Values. The order matches the column order of
// the raw input file.
const (
	GlobalActivePower = iota
	GlobalReactivePower
	Voltage
	GlobalIntensity
	SubMetering1
	SubMetering2
	SubMetering3

	ChannelCount
)

// ChannelNames holds the canonical column names for the seven channels,
// in channel-index order.
var ChannelNames = [ChannelCount]string{
	"Global_active_power",
	"Global_reactive_power",
	"Voltage",
	"Global_intensity",
	"Sub_metering_1",
	"Sub_metering_2",
	"Sub_metering_3",
}

// Record is a single observation: one timestamp plus the seven channel
// readings. A reading that was absent in the source is held as the missing
// marker, never as a sentinel number.
type Record struct {
	Timestamp time.Time
	Values    [ChannelCount]float64
}

// Missing returns the marker used for absent channel readings.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// HasMissing reports whether any channel of the record is missing.
func (r Record) HasMissing() bool {
	for _, v := range r.Values {
		if IsMissing(v) {
			return true
		}
	}
	return false
}
