// Package dataset defines the in-memory data model for the preprocessing
// pipeline: a Record of seven electric-power channel readings at one
// timestamp, and a Table of chronologically ordered records.
//
// Missing readings are represented by a distinguished marker (see Missing
// and IsMissing) rather than any sentinel number; parsing a valid reading
// can never produce the marker, so it is out-of-band throughout the
// pipeline.
//
// Tables always hold strictly increasing, unique timestamps. NewTable
// enforces this so that downstream sample-count window operations cannot
// silently misalign.
package dataset
